package entity

import "time"

// AuditAction names a journaled mutation
type AuditAction string

const (
	AuditItemAdded         AuditAction = "bag_item_added"
	AuditItemRemoved       AuditAction = "bag_item_removed"
	AuditItemStatusChanged AuditAction = "bag_item_status_changed"
	AuditBaggageCheckedIn  AuditAction = "baggage_checked_in"
	AuditCheckInConfirmed  AuditAction = "check_in_confirmed"
)

// AuditEntry is one append-only journal line
type AuditEntry struct {
	ID            string                 `json:"id" bson:"_id,omitempty"`
	Action        AuditAction            `json:"action" bson:"action"`
	RecordID      uint                   `json:"baggage_record_id,omitempty" bson:"baggageRecordId,omitempty"`
	ItemID        uint                   `json:"bag_item_id,omitempty" bson:"bagItemId,omitempty"`
	ReservationID uint                   `json:"reservation_id,omitempty" bson:"reservationId,omitempty"`
	Operator      string                 `json:"operator,omitempty" bson:"operator,omitempty"`
	RequestID     string                 `json:"request_id,omitempty" bson:"requestId,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty" bson:"payload,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at" bson:"occurredAt"`
}
