package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// BaggageStatus is the lifecycle state of a baggage record
type BaggageStatus string

const (
	BaggageRegistered BaggageStatus = "registered"
	BaggageCheckedIn  BaggageStatus = "checked_in"
)

// Valid reports whether s is one of the known states
func (s BaggageStatus) Valid() bool {
	return s == BaggageRegistered || s == BaggageCheckedIn
}

// Transition returns the next state when moving from s to next.
// registered -> checked_in is the only legal move; checked_in is terminal.
func (s BaggageStatus) Transition(next BaggageStatus) (BaggageStatus, error) {
	if s == BaggageCheckedIn {
		return s, ErrRecordLocked
	}
	if s == BaggageRegistered && next == BaggageCheckedIn {
		return next, nil
	}
	return s, fmt.Errorf("baggage status %q cannot move to %q", s, next)
}

// BagCategory classifies a physical piece
type BagCategory string

const (
	CategoryCarryOn BagCategory = "carry_on"
	CategoryHold    BagCategory = "hold"
	CategorySpecial BagCategory = "special"
)

// ParseBagCategory validates a category coming from the outside
func ParseBagCategory(s string) (BagCategory, error) {
	switch c := BagCategory(s); c {
	case CategoryCarryOn, CategoryHold, CategorySpecial:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown bag category %q", ErrInvalidItem, s)
}

// PurchaseMoment is the point of the journey at which a piece was bought
type PurchaseMoment string

const (
	MomentWeb      PurchaseMoment = "web"
	MomentCheckIn  PurchaseMoment = "checkin"
	MomentBoarding PurchaseMoment = "boarding"
)

// PurchaseMoments lists every known moment in a stable order
var PurchaseMoments = []PurchaseMoment{MomentWeb, MomentCheckIn, MomentBoarding}

// ParsePurchaseMoment validates a moment coming from the outside
func ParsePurchaseMoment(s string) (PurchaseMoment, error) {
	switch m := PurchaseMoment(s); m {
	case MomentWeb, MomentCheckIn, MomentBoarding:
		return m, nil
	}
	return "", &UnknownMomentError{Moment: PurchaseMoment(s)}
}

// DefaultItemStatus is the operational tag given to a new piece
const DefaultItemStatus = "registered"

// Column limits of the baggage tables
const (
	MinWeightKG     = 0.001
	MaxDimensionCM  = 9999.99
	MaxItemStatus   = 30
	MaxTagCode      = 50
	MaxOperatorName = 100
)

// BaggageRecord is the header for one passenger's pieces on one ticket.
// ItemCount and TotalWeight are derived from the live items and are only
// ever written by the repository after recomputing them.
type BaggageRecord struct {
	ID          uint          `json:"id"`
	PassengerID uint          `json:"passenger_id"`
	TicketID    uint          `json:"ticket_id"`
	Status      BaggageStatus `json:"status"`
	ItemCount   int           `json:"item_count"`
	TotalWeight float64       `json:"total_weight"`
	CheckedInBy *string       `json:"checked_in_by,omitempty"`
	CheckedInAt *time.Time    `json:"checked_in_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsCheckedIn reports whether the record reached its terminal state
func (r *BaggageRecord) IsCheckedIn() bool {
	return r.Status == BaggageCheckedIn
}

// BagItem is one physical piece
type BagItem struct {
	ID              uint           `json:"id"`
	BaggageRecordID uint           `json:"baggage_record_id"`
	Category        BagCategory    `json:"category"`
	Weight          float64        `json:"weight"`
	PurchaseMoment  PurchaseMoment `json:"purchase_moment"`
	Status          string         `json:"status"`
	TagCode         *string        `json:"tag_code,omitempty"`
	HeightCM        *float64       `json:"height_cm,omitempty"`
	WidthCM         *float64       `json:"width_cm,omitempty"`
	LengthCM        *float64       `json:"length_cm,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewBagItem carries the caller-supplied attributes of a piece to register
type NewBagItem struct {
	Category       BagCategory
	Weight         float64
	PurchaseMoment PurchaseMoment
	TagCode        *string
	HeightCM       *float64
	WidthCM        *float64
	LengthCM       *float64
}

// RoundWeight keeps weights at gram precision, the precision they are stored with
func RoundWeight(kg float64) float64 {
	return math.Round(kg*1000) / 1000
}

// Validate checks everything that does not depend on the fare table.
// Weight is judged before rounding, so a sub-gram piece is named as such.
func (n NewBagItem) Validate() error {
	if _, err := ParseBagCategory(string(n.Category)); err != nil {
		return err
	}
	if _, err := ParsePurchaseMoment(string(n.PurchaseMoment)); err != nil {
		return err
	}
	if !(n.Weight > 0) {
		return fmt.Errorf("%w: weight must be greater than 0, got %g", ErrInvalidWeight, n.Weight)
	}
	if RoundWeight(n.Weight) < MinWeightKG {
		return fmt.Errorf("%w: weight %g kg is below the 1 g resolution", ErrInvalidWeight, n.Weight)
	}
	for _, dim := range []struct {
		name  string
		value *float64
	}{{"height", n.HeightCM}, {"width", n.WidthCM}, {"length", n.LengthCM}} {
		if dim.value == nil {
			continue
		}
		if !(*dim.value > 0) || *dim.value > MaxDimensionCM {
			return fmt.Errorf("%w: %s must be greater than 0 and at most %.2f cm", ErrInvalidItem, dim.name, MaxDimensionCM)
		}
	}
	if n.TagCode != nil {
		if *n.TagCode == "" {
			return fmt.Errorf("%w: tag code must not be blank", ErrInvalidItem)
		}
		if utf8.RuneCountInString(*n.TagCode) > MaxTagCode {
			return fmt.Errorf("%w: tag code longer than %d characters", ErrInvalidItem, MaxTagCode)
		}
	}
	return nil
}

// NormalizeItemStatus trims an operational tag and checks it fits its column
func NormalizeItemStatus(status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return "", fmt.Errorf("%w: status must not be blank", ErrInvalidItem)
	}
	if utf8.RuneCountInString(status) > MaxItemStatus {
		return "", fmt.Errorf("%w: status longer than %d characters", ErrInvalidItem, MaxItemStatus)
	}
	return status, nil
}

// NormalizeOperator trims an operator key; empty is allowed
func NormalizeOperator(operator string) (string, error) {
	operator = strings.TrimSpace(operator)
	if utf8.RuneCountInString(operator) > MaxOperatorName {
		return "", fmt.Errorf("%w: operator longer than %d characters", ErrInvalidKey, MaxOperatorName)
	}
	return operator, nil
}
