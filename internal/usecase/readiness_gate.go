package usecase

import (
	"context"

	"baggage-checkin-service/internal/domain/entity"
)

// CheckInGate is the only question the flight check-in flow asks about baggage
type CheckInGate interface {
	CanConfirmCheckIn(ctx context.Context, passengerID, ticketID uint) (entity.Readiness, error)
}

// ReadinessGate answers CheckInGate from the baggage manager.
// It passes only for a checked-in record whose pieces are still within limits;
// a registered record reports its readiness reason, or "baggage not checked in"
// when it is ready but nobody finalized it.
type ReadinessGate struct {
	baggage *BaggageManager
}

// NewReadinessGate creates a new readiness gate
func NewReadinessGate(baggage *BaggageManager) *ReadinessGate {
	return &ReadinessGate{baggage: baggage}
}

// CanConfirmCheckIn resolves the (passenger, ticket) record and evaluates it
func (g *ReadinessGate) CanConfirmCheckIn(ctx context.Context, passengerID, ticketID uint) (entity.Readiness, error) {
	record, err := g.baggage.GetOrCreate(ctx, passengerID, ticketID)
	if err != nil {
		return entity.Readiness{}, err
	}

	if !record.IsCheckedIn() {
		r, err := g.baggage.IsReadyForCheckIn(ctx, record.ID)
		if err != nil || !r.Ready {
			return r, err
		}
		return entity.NotCheckedIn(), nil
	}

	ctx, cancel := boundContext(ctx, g.baggage.timeout)
	defer cancel()
	items, err := g.baggage.baggageRepo.ListItems(ctx, record.ID)
	if err != nil {
		return entity.Readiness{}, err
	}
	return g.baggage.contentReadiness(items)
}
