package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"baggage-checkin-service/internal/domain/entity"

	"github.com/go-chi/chi/v5"
)

// errorBody is the envelope every failed request answers with
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string            `json:"code"`
	Kind      entity.ErrorKind  `json:"kind"`
	Message   string            `json:"message"`
	Readiness *entity.Readiness `json:"readiness,omitempty"`
	Maximum   *float64          `json:"maximum_weight,omitempty"`
	Moment    string            `json:"moment,omitempty"`
}

// errorCodes gives each domain error a stable machine-readable code; first match wins
var errorCodes = []struct {
	err  error
	code string
}{
	{entity.ErrTransient, "store_unavailable"},
	{entity.ErrWeightExceedsMaximum, "weight_exceeds_maximum"},
	{entity.ErrUnknownMoment, "unknown_moment"},
	{entity.ErrEmptyBaggageList, "empty_baggage_list"},
	{entity.ErrInvalidWeight, "invalid_weight"},
	{entity.ErrInvalidItem, "invalid_item"},
	{entity.ErrInvalidKey, "invalid_key"},
	{entity.ErrRecordLocked, "record_locked"},
	{entity.ErrNotReady, "not_ready"},
	{entity.ErrBaggageNotReady, "baggage_not_ready"},
	{entity.ErrAlreadyConfirmed, "already_confirmed"},
	{entity.ErrReservationNotFound, "reservation_not_found"},
	{entity.ErrRecordNotFound, "record_not_found"},
	{entity.ErrItemNotFound, "item_not_found"},
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status by its kind and fills the envelope
func writeError(w http.ResponseWriter, err error) {
	kind := entity.Kind(err)
	detail := errorDetail{Code: "internal", Kind: kind, Message: err.Error()}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			detail.Code = c.code
			break
		}
	}

	var (
		tooHeavy    *entity.WeightExceedsMaximumError
		notReady    *entity.NotReadyError
		gateRefused *entity.BaggageNotReadyError
	)
	switch {
	case errors.As(err, &tooHeavy):
		detail.Maximum = &tooHeavy.Maximum
		detail.Moment = string(tooHeavy.Moment)
	case errors.As(err, &notReady):
		detail.Readiness = &notReady.Reason
	case errors.As(err, &gateRefused):
		detail.Readiness = &gateRefused.Reason
	}

	status := http.StatusInternalServerError
	switch kind {
	case entity.KindValidation:
		status = http.StatusUnprocessableEntity
		if errors.Is(err, entity.ErrInvalidKey) {
			status = http.StatusBadRequest
		}
	case entity.KindState:
		status = http.StatusConflict
	case entity.KindNotFound:
		status = http.StatusNotFound
	case entity.KindTransient:
		status = http.StatusServiceUnavailable
		detail.Message = "data store temporarily unavailable, retry later"
	default:
		detail.Message = "internal error"
	}

	writeJSON(w, status, errorBody{Error: detail})
}

// decodeJSON reads a JSON body; a malformed body is an invalid-key error (400)
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", entity.ErrInvalidKey, err)
	}
	return nil
}

// idParam parses a positive numeric URL parameter
func idParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", entity.ErrInvalidKey, name, raw)
	}
	return uint(id), nil
}
