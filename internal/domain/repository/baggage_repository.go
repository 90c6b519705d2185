package repository

import (
	"context"
	"time"

	"baggage-checkin-service/internal/domain/entity"
)

// CheckInGuard decides, inside the locked transaction, whether a record may be finalized
type CheckInGuard func(record *entity.BaggageRecord, items []*entity.BagItem) error

// ItemGuard decides, inside the locked transaction and only once the record is
// known to be open, whether a piece may be added. A nil guard accepts every piece.
type ItemGuard func(record *entity.BaggageRecord) error

// BaggageRepository defines the persistence operations for baggage records and their items.
// Every mutation is a single atomic read-modify-write on the owning record: the record row
// is locked, its state checked, the items changed, and item_count/total_weight recomputed
// from the persisted items before commit.
type BaggageRepository interface {
	GetOrCreate(ctx context.Context, passengerID, ticketID uint) (*entity.BaggageRecord, error)
	FindByID(ctx context.Context, recordID uint) (*entity.BaggageRecord, error)
	ListItems(ctx context.Context, recordID uint) ([]*entity.BagItem, error)
	FindItem(ctx context.Context, itemID uint) (*entity.BagItem, error)
	AddItem(ctx context.Context, recordID uint, item entity.NewBagItem, guard ItemGuard) (*entity.BagItem, *entity.BaggageRecord, error)
	RemoveItem(ctx context.Context, itemID uint) (*entity.BagItem, *entity.BaggageRecord, error)
	UpdateItemStatus(ctx context.Context, itemID uint, status string) (*entity.BagItem, error)
	CheckIn(ctx context.Context, recordID uint, operator string, at time.Time, guard CheckInGuard) (*entity.BaggageRecord, error)
}
