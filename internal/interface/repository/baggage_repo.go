package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBaggageRepository implements the BaggageRepository interface
type GormBaggageRepository struct {
	db *gorm.DB
}

// NewGormBaggageRepository creates a new GORM baggage repository
func NewGormBaggageRepository(db *gorm.DB) repository.BaggageRepository {
	return &GormBaggageRepository{
		db: db,
	}
}

// BaggageRecords GORM model for database mapping
type BaggageRecords struct {
	ID          uint       `gorm:"primaryKey"`
	PassengerID uint       `gorm:"column:passenger_id;uniqueIndex:ux_baggage_record_passenger_ticket"`
	TicketID    uint       `gorm:"column:ticket_id;uniqueIndex:ux_baggage_record_passenger_ticket"`
	Status      string     `gorm:"column:status"`
	ItemCount   int        `gorm:"column:item_count"`
	TotalWeight float64    `gorm:"column:total_weight"`
	CheckedInBy *string    `gorm:"column:checked_in_by"`
	CheckedInAt *time.Time `gorm:"column:checked_in_at"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (BaggageRecords) TableName() string {
	return "baggage_record"
}

// BagItems GORM model for database mapping
type BagItems struct {
	ID              uint     `gorm:"primaryKey"`
	BaggageRecordID uint     `gorm:"column:baggage_record_id;index"`
	Category        string   `gorm:"column:category"`
	Weight          float64  `gorm:"column:weight"`
	PurchaseMoment  string   `gorm:"column:purchase_moment"`
	Status          string   `gorm:"column:status"`
	TagCode         *string  `gorm:"column:tag_code;unique"`
	HeightCM        *float64 `gorm:"column:height_cm"`
	WidthCM         *float64 `gorm:"column:width_cm"`
	LengthCM        *float64 `gorm:"column:length_cm"`
	CreatedAt       time.Time
}

// TableName overrides the default table name
func (BagItems) TableName() string {
	return "bag_item"
}

func (m *BaggageRecords) toEntity() *entity.BaggageRecord {
	return &entity.BaggageRecord{
		ID:          m.ID,
		PassengerID: m.PassengerID,
		TicketID:    m.TicketID,
		Status:      entity.BaggageStatus(m.Status),
		ItemCount:   m.ItemCount,
		TotalWeight: m.TotalWeight,
		CheckedInBy: m.CheckedInBy,
		CheckedInAt: m.CheckedInAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (m *BagItems) toEntity() *entity.BagItem {
	return &entity.BagItem{
		ID:              m.ID,
		BaggageRecordID: m.BaggageRecordID,
		Category:        entity.BagCategory(m.Category),
		Weight:          m.Weight,
		PurchaseMoment:  entity.PurchaseMoment(m.PurchaseMoment),
		Status:          m.Status,
		TagCode:         m.TagCode,
		HeightCM:        m.HeightCM,
		WidthCM:         m.WidthCM,
		LengthCM:        m.LengthCM,
		CreatedAt:       m.CreatedAt,
	}
}

// GetOrCreate returns the record for the pair, inserting it when absent.
// A concurrent creator that loses the unique constraint reads the winner's row.
func (r *GormBaggageRepository) GetOrCreate(ctx context.Context, passengerID, ticketID uint) (*entity.BaggageRecord, error) {
	db := r.db.WithContext(ctx)

	existing, err := r.findByPair(db, passengerID, ticketID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing.toEntity(), nil
	}

	model := BaggageRecords{
		PassengerID: passengerID,
		TicketID:    ticketID,
		Status:      string(entity.BaggageRegistered),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "passenger_id"}, {Name: "ticket_id"}},
		DoNothing: true,
	}).Create(&model)
	if result.Error != nil && !isUniqueViolation(result.Error) {
		return nil, translateError("create baggage record", result.Error)
	}
	if result.Error == nil && result.RowsAffected == 1 {
		return model.toEntity(), nil
	}

	winner, err := r.findByPair(db, passengerID, ticketID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, translateError("create baggage record", errors.New("record vanished after conflict"))
	}
	return winner.toEntity(), nil
}

func (r *GormBaggageRepository) findByPair(db *gorm.DB, passengerID, ticketID uint) (*BaggageRecords, error) {
	var model BaggageRecords
	err := db.Where("passenger_id = ? AND ticket_id = ?", passengerID, ticketID).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError("find baggage record", err)
	}
	return &model, nil
}

// FindByID finds a baggage record by key
func (r *GormBaggageRepository) FindByID(ctx context.Context, recordID uint) (*entity.BaggageRecord, error) {
	var model BaggageRecords
	err := r.db.WithContext(ctx).Take(&model, "id = ?", recordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrRecordNotFound
	}
	if err != nil {
		return nil, translateError("find baggage record", err)
	}
	return model.toEntity(), nil
}

// ListItems returns the live items of a record in creation order
func (r *GormBaggageRepository) ListItems(ctx context.Context, recordID uint) ([]*entity.BagItem, error) {
	items, err := listItems(r.db.WithContext(ctx), recordID)
	if err != nil {
		return nil, translateError("list bag items", err)
	}
	return items, nil
}

// FindItem finds a bag item by key
func (r *GormBaggageRepository) FindItem(ctx context.Context, itemID uint) (*entity.BagItem, error) {
	var model BagItems
	err := r.db.WithContext(ctx).Take(&model, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrItemNotFound
	}
	if err != nil {
		return nil, translateError("find bag item", err)
	}
	return model.toEntity(), nil
}

// AddItem inserts a piece and recomputes the record's aggregates in one transaction.
// A checked-in record refuses with ErrRecordLocked before guard sees the piece.
func (r *GormBaggageRepository) AddItem(ctx context.Context, recordID uint, item entity.NewBagItem, guard repository.ItemGuard) (*entity.BagItem, *entity.BaggageRecord, error) {
	var (
		created *entity.BagItem
		updated *entity.BaggageRecord
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockRecord(tx, recordID)
		if err != nil {
			return err
		}
		if record.Status == string(entity.BaggageCheckedIn) {
			return entity.ErrRecordLocked
		}
		if guard != nil {
			if err := guard(record.toEntity()); err != nil {
				return err
			}
		}

		model := BagItems{
			BaggageRecordID: recordID,
			Category:        string(item.Category),
			Weight:          item.Weight,
			PurchaseMoment:  string(item.PurchaseMoment),
			Status:          entity.DefaultItemStatus,
			TagCode:         item.TagCode,
			HeightCM:        item.HeightCM,
			WidthCM:         item.WidthCM,
			LengthCM:        item.LengthCM,
		}
		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: tag code already in use", entity.ErrInvalidItem)
			}
			return err
		}
		if err := recompute(tx, record); err != nil {
			return err
		}
		created = model.toEntity()
		updated = record.toEntity()
		return nil
	})
	if err != nil {
		return nil, nil, translateError("add bag item", err)
	}
	return created, updated, nil
}

// RemoveItem deletes a piece and recomputes the record's aggregates in one transaction
func (r *GormBaggageRepository) RemoveItem(ctx context.Context, itemID uint) (*entity.BagItem, *entity.BaggageRecord, error) {
	var (
		removed *entity.BagItem
		updated *entity.BaggageRecord
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BagItems
		if err := tx.Take(&model, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrItemNotFound
			}
			return err
		}

		record, err := lockRecord(tx, model.BaggageRecordID)
		if err != nil {
			return err
		}
		if record.Status == string(entity.BaggageCheckedIn) {
			return entity.ErrRecordLocked
		}

		result := tx.Delete(&BagItems{}, "id = ?", itemID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrItemNotFound
		}
		if err := recompute(tx, record); err != nil {
			return err
		}
		removed = model.toEntity()
		updated = record.toEntity()
		return nil
	})
	if err != nil {
		return nil, nil, translateError("remove bag item", err)
	}
	return removed, updated, nil
}

// UpdateItemStatus sets the free-text status of a piece
func (r *GormBaggageRepository) UpdateItemStatus(ctx context.Context, itemID uint, status string) (*entity.BagItem, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&BagItems{}).Where("id = ?", itemID).Update("status", status)
	if result.Error != nil {
		return nil, translateError("update bag item status", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entity.ErrItemNotFound
	}
	return r.FindItem(ctx, itemID)
}

// CheckIn moves the record to checked_in when guard accepts its current items
func (r *GormBaggageRepository) CheckIn(ctx context.Context, recordID uint, operator string, at time.Time, guard repository.CheckInGuard) (*entity.BaggageRecord, error) {
	var updated *entity.BaggageRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockRecord(tx, recordID)
		if err != nil {
			return err
		}
		items, err := listItems(tx, recordID)
		if err != nil {
			return err
		}
		if err := guard(record.toEntity(), items); err != nil {
			return err
		}

		next, err := entity.BaggageStatus(record.Status).Transition(entity.BaggageCheckedIn)
		if err != nil {
			return err
		}
		var checkedInBy *string
		if operator != "" {
			checkedInBy = &operator
		}
		if err := tx.Model(record).Updates(map[string]interface{}{
			"status":        string(next),
			"checked_in_by": checkedInBy,
			"checked_in_at": at,
		}).Error; err != nil {
			return err
		}
		record.Status = string(next)
		record.CheckedInBy = checkedInBy
		record.CheckedInAt = &at
		updated = record.toEntity()
		return nil
	})
	if err != nil {
		return nil, translateError("check in baggage record", err)
	}
	return updated, nil
}

// lockRecord reads the record row with FOR UPDATE so that writers on the same record serialize
func lockRecord(tx *gorm.DB, recordID uint) (*BaggageRecords, error) {
	var record BaggageRecords
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&record, "id = ?", recordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func listItems(db *gorm.DB, recordID uint) ([]*entity.BagItem, error) {
	var models []BagItems
	if err := db.Where("baggage_record_id = ?", recordID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]*entity.BagItem, 0, len(models))
	for i := range models {
		items = append(items, models[i].toEntity())
	}
	return items, nil
}

// recompute derives item_count/total_weight from the persisted items and writes them back
func recompute(tx *gorm.DB, record *BaggageRecords) error {
	var agg struct {
		ItemCount   int
		TotalWeight float64
	}
	err := tx.Model(&BagItems{}).
		Select("COUNT(*) AS item_count, COALESCE(SUM(weight), 0) AS total_weight").
		Where("baggage_record_id = ?", record.ID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	if err := tx.Model(record).Updates(map[string]interface{}{
		"item_count":   agg.ItemCount,
		"total_weight": agg.TotalWeight,
	}).Error; err != nil {
		return err
	}
	record.ItemCount = agg.ItemCount
	record.TotalWeight = agg.TotalWeight
	return nil
}
