package repository

import (
	"context"

	"baggage-checkin-service/internal/domain/entity"
)

// AuditRepository appends journal entries; entries are never updated or removed
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	ListByRecord(ctx context.Context, recordID uint, limit int) ([]*entity.AuditEntry, error)
}
