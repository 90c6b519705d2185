package repository

import (
	"context"
	"errors"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormReservationRepository implements the ReservationRepository interface
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GORM reservation repository
func NewGormReservationRepository(db *gorm.DB) repository.ReservationRepository {
	return &GormReservationRepository{
		db: db,
	}
}

// Reservations GORM model for database mapping
type Reservations struct {
	ID          uint        `gorm:"primaryKey"`
	Code        string      `gorm:"column:code;unique"`
	Status      string      `gorm:"column:status"`
	CheckInDone bool        `gorm:"column:check_in_realizado"`
	PassengerID *uint       `gorm:"column:passenger_id"`
	TicketID    *uint       `gorm:"column:ticket_id"`
	FlightID    *uint       `gorm:"column:flight_id"`
	Passenger   *Passengers `gorm:"foreignKey:PassengerID"`
	Flight      *Flights    `gorm:"foreignKey:FlightID"`
}

// TableName overrides the default table name
func (Reservations) TableName() string {
	return "reservation"
}

// Passengers GORM model for database mapping
type Passengers struct {
	ID             uint   `gorm:"primaryKey"`
	FirstName      string `gorm:"column:first_name"`
	LastName       string `gorm:"column:last_name"`
	DocumentType   string `gorm:"column:document_type"`
	DocumentNumber string `gorm:"column:document_number"`
}

// TableName overrides the default table name
func (Passengers) TableName() string {
	return "passenger"
}

// Flights GORM model for database mapping
type Flights struct {
	ID            uint       `gorm:"primaryKey"`
	Number        string     `gorm:"column:number"`
	Status        string     `gorm:"column:status"`
	BoardingTime  *string    `gorm:"column:boarding_time"`
	DepartureAt   *time.Time `gorm:"column:departure_at"`
	ArrivalAt     *time.Time `gorm:"column:arrival_at"`
	OriginID      *uint      `gorm:"column:origin_id"`
	DestinationID *uint      `gorm:"column:destination_id"`
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flight"
}

// FindByCode finds a reservation with its passenger and flight by booking code
func (r *GormReservationRepository) FindByCode(ctx context.Context, code string) (*entity.Reservation, error) {
	var model Reservations
	err := r.db.WithContext(ctx).
		Preload("Passenger").
		Preload("Flight").
		Where("code = ?", code).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrReservationNotFound
	}
	if err != nil {
		return nil, translateError("find reservation", err)
	}

	reservation := &entity.Reservation{
		ID:          model.ID,
		Code:        model.Code,
		Status:      model.Status,
		CheckInDone: model.CheckInDone,
		TicketID:    model.TicketID,
	}
	if p := model.Passenger; p != nil {
		reservation.Passenger = &entity.Passenger{
			ID:             p.ID,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DocumentType:   p.DocumentType,
			DocumentNumber: p.DocumentNumber,
		}
	}
	if f := model.Flight; f != nil {
		reservation.Flight = &entity.Flight{
			ID:           f.ID,
			Number:       f.Number,
			Status:       f.Status,
			BoardingTime: f.BoardingTime,
			DepartureAt:  f.DepartureAt,
			ArrivalAt:    f.ArrivalAt,
			OriginID:     f.OriginID,
			DestID:       f.DestinationID,
		}
	}
	return reservation, nil
}
