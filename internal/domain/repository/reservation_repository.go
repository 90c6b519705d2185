package repository

import (
	"context"

	"baggage-checkin-service/internal/domain/entity"
)

// ReservationRepository resolves bookings owned by the reservation side
type ReservationRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Reservation, error)
}
