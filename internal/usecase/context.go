package usecase

import (
	"context"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/repository"
	"baggage-checkin-service/pkg/logger"
)

type requestIDKey struct{}

// WithRequestID stores the caller's correlation id for journal entries
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation id or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// boundContext applies the request timeout when one is configured
func boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// journal appends entry to the audit log when one is wired.
// The mutation it describes is already committed, so a failure is only logged.
func journal(ctx context.Context, audit repository.AuditRepository, log logger.Logger, entry *entity.AuditEntry) {
	if audit == nil {
		return
	}
	entry.RequestID = RequestIDFromContext(ctx)
	if err := audit.Append(ctx, entry); err != nil {
		log.Warn("Failed to append audit entry", "action", entry.Action, "recordID", entry.RecordID, "reservationID", entry.ReservationID, "error", err)
	}
}
