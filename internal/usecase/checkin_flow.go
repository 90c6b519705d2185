package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/repository"
	"baggage-checkin-service/pkg/logger"
	"baggage-checkin-service/pkg/metrics"
)

// CheckInFlow confirms a passenger's flight check-in once their baggage passes the gate
type CheckInFlow struct {
	reservationRepo repository.ReservationRepository
	checkInRepo     repository.CheckInRepository
	auditRepo       repository.AuditRepository
	gate            CheckInGate
	metrics         *metrics.Metrics
	logger          logger.Logger
	timeout         time.Duration
	now             func() time.Time
}

// NewCheckInFlow creates a new check-in flow. auditRepo may be nil.
func NewCheckInFlow(
	reservationRepo repository.ReservationRepository,
	checkInRepo repository.CheckInRepository,
	auditRepo repository.AuditRepository,
	gate CheckInGate,
	metrics *metrics.Metrics,
	logger logger.Logger,
	timeout time.Duration,
) *CheckInFlow {
	return &CheckInFlow{
		reservationRepo: reservationRepo,
		checkInRepo:     checkInRepo,
		auditRepo:       auditRepo,
		gate:            gate,
		metrics:         metrics,
		logger:          logger,
		timeout:         timeout,
		now:             time.Now,
	}
}

// LookupReservation resolves a booking code into what the desk shows the operator
func (f *CheckInFlow) LookupReservation(ctx context.Context, code string) (*entity.ReservationSummary, error) {
	ctx, cancel := boundContext(ctx, f.timeout)
	defer cancel()

	reservation, err := f.resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	latest, err := f.checkInRepo.LatestByReservation(ctx, reservation.ID)
	if err != nil {
		f.logger.Error("Failed to read latest check-in", "reservationID", reservation.ID, "error", err)
		return nil, err
	}

	p, fl := reservation.Passenger, reservation.Flight
	return &entity.ReservationSummary{
		ReservationID:     reservation.ID,
		Code:              reservation.Code,
		PassengerID:       p.ID,
		TicketID:          *reservation.TicketID,
		PassengerName:     p.FullName(),
		PassengerDocument: fmt.Sprintf("%s: %s", p.DocumentType, p.DocumentNumber),
		FlightID:          fl.ID,
		FlightNumber:      fl.Number,
		FlightStatus:      fl.Status,
		BoardingTime:      fl.BoardingTime,
		DepartureAt:       fl.DepartureAt,
		ArrivalAt:         fl.ArrivalAt,
		OriginID:          fl.OriginID,
		DestinationID:     fl.DestID,
		LatestCheckIn:     latest,
		CheckInConfirmed:  latest != nil && strings.EqualFold(latest.Status, entity.CheckInConfirmed),
		Active:            reservation.Active(f.now()),
	}, nil
}

// ConfirmCheckIn writes a confirmed check-in event for the reservation and sets
// its check-in flag. It refuses while the passenger's baggage is not checked in
// and valid, and reports ErrAlreadyConfirmed instead of writing a second event.
func (f *CheckInFlow) ConfirmCheckIn(ctx context.Context, code string, operatorID string) (*entity.CheckInEvent, error) {
	ctx, cancel := boundContext(ctx, f.timeout)
	defer cancel()
	defer f.observe()()

	operatorID, err := entity.NormalizeOperator(operatorID)
	if err != nil {
		return nil, err
	}
	reservation, err := f.resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	log := f.logger.With("reservationID", reservation.ID, "code", reservation.Code)

	if reservation.CheckInDone {
		log.Warn("Check-in already confirmed")
		return nil, entity.ErrAlreadyConfirmed
	}

	readiness, err := f.gate.CanConfirmCheckIn(ctx, reservation.Passenger.ID, *reservation.TicketID)
	if err != nil {
		f.fail(err)
		log.Error("Baggage gate failed", "error", err)
		return nil, err
	}
	if !readiness.Ready {
		f.metrics.GateRejections.WithLabelValues(string(readiness.Code)).Inc()
		log.Warn("Check-in refused by baggage gate", "reason", readiness.Code, "message", readiness.Message)
		return nil, &entity.BaggageNotReadyError{Reason: readiness}
	}

	event := &entity.CheckInEvent{
		ReservationID: reservation.ID,
		PassengerID:   reservation.Passenger.ID,
		Timestamp:     f.now().UTC(),
		Status:        entity.CheckInConfirmed,
	}
	if operatorID != "" {
		event.OperatorID = &operatorID
	}

	if err := f.checkInRepo.Confirm(ctx, event); err != nil {
		if errors.Is(err, entity.ErrAlreadyConfirmed) {
			log.Warn("Check-in confirmed concurrently")
		} else {
			f.fail(err)
			log.Error("Failed to confirm check-in", "error", err)
		}
		return nil, err
	}

	latest, err := f.checkInRepo.LatestByReservation(ctx, reservation.ID)
	if err != nil {
		f.fail(err)
		log.Error("Failed to re-read check-in", "error", err)
		return nil, err
	}
	if latest == nil || !strings.EqualFold(latest.Status, entity.CheckInConfirmed) {
		err := fmt.Errorf("check-in for reservation %d not visible after write", reservation.ID)
		f.fail(err)
		return nil, err
	}

	f.metrics.CheckInsConfirmed.Inc()
	log.Info("Check-in confirmed", "eventID", latest.ID, "passengerID", latest.PassengerID, "operator", operatorID)

	journal(ctx, f.auditRepo, f.logger, &entity.AuditEntry{
		Action:        entity.AuditCheckInConfirmed,
		ReservationID: reservation.ID,
		Operator:      operatorID,
		Payload: map[string]interface{}{
			"eventId":     latest.ID,
			"passengerId": latest.PassengerID,
			"ticketId":    *reservation.TicketID,
		},
		OccurredAt: f.now(),
	})
	return latest, nil
}

// resolve finds the reservation and insists that passenger, ticket and flight are known
func (f *CheckInFlow) resolve(ctx context.Context, code string) (*entity.Reservation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: reservation code is required", entity.ErrInvalidKey)
	}

	reservation, err := f.reservationRepo.FindByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, entity.ErrReservationNotFound) {
			f.fail(err)
			f.logger.Error("Failed to look up reservation", "code", code, "error", err)
		}
		return nil, err
	}
	if !reservation.Complete() {
		f.logger.Warn("Reservation data incomplete", "code", code, "reservationID", reservation.ID)
		return nil, fmt.Errorf("%w: passenger, ticket or flight data incomplete for %s", entity.ErrReservationNotFound, code)
	}
	return reservation, nil
}

func (f *CheckInFlow) fail(err error) {
	f.metrics.ErrorsCount.WithLabelValues("confirm_check_in", string(entity.Kind(err))).Inc()
}

func (f *CheckInFlow) observe() func() {
	start := time.Now()
	return func() {
		f.metrics.OperationDuration.WithLabelValues("confirm_check_in").Observe(time.Since(start).Seconds())
	}
}
