package entity

import (
	"errors"
	"fmt"
)

// Validation errors: the caller can correct the input
var (
	ErrUnknownMoment        = errors.New("unknown purchase moment")
	ErrEmptyBaggageList     = errors.New("baggage list is empty")
	ErrInvalidWeight        = errors.New("invalid weight")
	ErrInvalidItem          = errors.New("invalid bag item")
	ErrInvalidKey           = errors.New("invalid key")
	ErrWeightExceedsMaximum = errors.New("weight exceeds maximum per piece")
)

// State errors: the operation is illegal in the current lifecycle state
var (
	ErrRecordLocked     = errors.New("baggage record is checked in")
	ErrNotReady         = errors.New("baggage is not ready for check-in")
	ErrBaggageNotReady  = errors.New("baggage not ready")
	ErrAlreadyConfirmed = errors.New("check-in already confirmed")
)

// Not-found errors
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrRecordNotFound      = errors.New("baggage record not found")
	ErrItemNotFound        = errors.New("bag item not found")
)

// ErrTransient marks store failures worth retrying
var ErrTransient = errors.New("transient data store error")

// UnknownMomentError names the rejected moment
type UnknownMomentError struct {
	Moment PurchaseMoment
}

func (e *UnknownMomentError) Error() string {
	return fmt.Sprintf("unknown purchase moment %q", e.Moment)
}

func (e *UnknownMomentError) Is(target error) bool { return target == ErrUnknownMoment }

// WeightExceedsMaximumError carries the ceiling so the UI can display it
type WeightExceedsMaximumError struct {
	ItemID  uint
	Weight  float64
	Maximum float64
	Moment  PurchaseMoment
}

func (e *WeightExceedsMaximumError) Error() string {
	return fmt.Sprintf("weight %.2f kg exceeds maximum %.2f kg per piece for moment=%s", e.Weight, e.Maximum, e.Moment)
}

func (e *WeightExceedsMaximumError) Is(target error) bool { return target == ErrWeightExceedsMaximum }

// NotReadyError is returned by the baggage check-in transition
type NotReadyError struct {
	Reason Readiness
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("baggage is not ready for check-in: %s", e.Reason.Message)
}

func (e *NotReadyError) Is(target error) bool { return target == ErrNotReady }

// BaggageNotReadyError is returned by the flight check-in flow when the gate refuses
type BaggageNotReadyError struct {
	Reason Readiness
}

func (e *BaggageNotReadyError) Error() string {
	return fmt.Sprintf("baggage not ready: %s", e.Reason.Message)
}

func (e *BaggageNotReadyError) Is(target error) bool { return target == ErrBaggageNotReady }

// TransientError wraps a timeout or unavailable store
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Is(target error) bool { return target == ErrTransient }

// ErrorKind groups errors by how a caller should react to them
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindState      ErrorKind = "state"
	KindNotFound   ErrorKind = "not_found"
	KindTransient  ErrorKind = "transient"
	KindInternal   ErrorKind = "internal"
)

// Kind classifies err. Only KindTransient is worth a retry.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransient):
		return KindTransient
	case errors.Is(err, ErrUnknownMoment),
		errors.Is(err, ErrEmptyBaggageList),
		errors.Is(err, ErrInvalidWeight),
		errors.Is(err, ErrInvalidItem),
		errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrWeightExceedsMaximum):
		return KindValidation
	case errors.Is(err, ErrRecordLocked),
		errors.Is(err, ErrNotReady),
		errors.Is(err, ErrBaggageNotReady),
		errors.Is(err, ErrAlreadyConfirmed):
		return KindState
	case errors.Is(err, ErrReservationNotFound),
		errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrItemNotFound):
		return KindNotFound
	}
	return KindInternal
}
