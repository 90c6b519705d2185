package repository

import (
	"context"
	"errors"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormCheckInRepository implements the CheckInRepository interface
type GormCheckInRepository struct {
	db *gorm.DB
}

// NewGormCheckInRepository creates a new GORM check-in repository
func NewGormCheckInRepository(db *gorm.DB) repository.CheckInRepository {
	return &GormCheckInRepository{
		db: db,
	}
}

// CheckInEvents GORM model for database mapping
type CheckInEvents struct {
	ID            uint      `gorm:"primaryKey"`
	ReservationID uint      `gorm:"column:reservation_id;index"`
	PassengerID   uint      `gorm:"column:passenger_id"`
	OperatorID    *string   `gorm:"column:operator_id"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
	Status        string    `gorm:"column:status"`
}

// TableName overrides the default table name
func (CheckInEvents) TableName() string {
	return "check_in_event"
}

func (m *CheckInEvents) toEntity() *entity.CheckInEvent {
	return &entity.CheckInEvent{
		ID:            m.ID,
		ReservationID: m.ReservationID,
		PassengerID:   m.PassengerID,
		OperatorID:    m.OperatorID,
		Timestamp:     m.OccurredAt,
		Status:        m.Status,
	}
}

// Confirm sets check_in_realizado only if it was still false, then writes the event.
// The guarded update makes a second confirmation lose deterministically.
func (r *GormCheckInRepository) Confirm(ctx context.Context, event *entity.CheckInEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Reservations{}).
			Where("id = ? AND check_in_realizado = ?", event.ReservationID, false).
			Update("check_in_realizado", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&Reservations{}).Where("id = ?", event.ReservationID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return entity.ErrReservationNotFound
			}
			return entity.ErrAlreadyConfirmed
		}

		model := CheckInEvents{
			ReservationID: event.ReservationID,
			PassengerID:   event.PassengerID,
			OperatorID:    event.OperatorID,
			OccurredAt:    event.Timestamp,
			Status:        event.Status,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		event.ID = model.ID
		return nil
	})
	return translateError("confirm check-in", err)
}

// LatestByReservation returns the most recent event, or nil when there is none
func (r *GormCheckInRepository) LatestByReservation(ctx context.Context, reservationID uint) (*entity.CheckInEvent, error) {
	var model CheckInEvents
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("occurred_at DESC").
		Order("id DESC").
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError("find latest check-in", err)
	}
	return model.toEntity(), nil
}

// CountByReservation counts the events written for a reservation
func (r *GormCheckInRepository) CountByReservation(ctx context.Context, reservationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CheckInEvents{}).Where("reservation_id = ?", reservationID).Count(&count).Error
	if err != nil {
		return 0, translateError("count check-ins", err)
	}
	return count, nil
}
