package repository

import (
	"context"

	"baggage-checkin-service/internal/domain/entity"
)

// CheckInRepository stores flight check-in events
type CheckInRepository interface {
	// Confirm flips the reservation's check-in flag and writes event in one
	// transaction. It fails with entity.ErrAlreadyConfirmed when the flag was already set.
	Confirm(ctx context.Context, event *entity.CheckInEvent) error
	LatestByReservation(ctx context.Context, reservationID uint) (*entity.CheckInEvent, error)
	CountByReservation(ctx context.Context, reservationID uint) (int64, error)
}
