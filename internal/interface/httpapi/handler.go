package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/fare"
	"baggage-checkin-service/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// BaggageService is the baggage side the handlers drive
type BaggageService interface {
	GetOrCreate(ctx context.Context, passengerID, ticketID uint) (*entity.BaggageRecord, error)
	GetRecord(ctx context.Context, recordID uint) (*entity.BaggageRecord, []*entity.BagItem, error)
	AddItem(ctx context.Context, recordID uint, item entity.NewBagItem) (*entity.BagItem, error)
	RemoveItem(ctx context.Context, itemID uint) error
	UpdateItemStatus(ctx context.Context, itemID uint, status string) (*entity.BagItem, error)
	IsReadyForCheckIn(ctx context.Context, recordID uint) (entity.Readiness, error)
	ConfirmCheckedIn(ctx context.Context, recordID uint, operatorID string) (*entity.BaggageRecord, error)
	ComputeFare(items []*entity.BagItem) (*entity.FareBreakdown, error)
	Invoice(ctx context.Context, recordID uint) (*entity.Invoice, error)
	History(ctx context.Context, recordID uint, limit int) ([]*entity.AuditEntry, error)
	Rules() *fare.RuleTable
}

// CheckInService is the flight check-in side the handlers drive
type CheckInService interface {
	LookupReservation(ctx context.Context, code string) (*entity.ReservationSummary, error)
	ConfirmCheckIn(ctx context.Context, code string, operatorID string) (*entity.CheckInEvent, error)
}

// Handler serves the desk UI
type Handler struct {
	baggage BaggageService
	checkIn CheckInService
	logger  logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(baggage BaggageService, checkIn CheckInService, logger logger.Logger) *Handler {
	return &Handler{
		baggage: baggage,
		checkIn: checkIn,
		logger:  logger,
	}
}

type recordRequest struct {
	PassengerID uint `json:"passenger_id"`
	TicketID    uint `json:"ticket_id"`
}

type recordResponse struct {
	Record *entity.BaggageRecord `json:"record"`
	Items  []*entity.BagItem     `json:"items"`
}

type addItemRequest struct {
	Category       string   `json:"category"`
	Weight         float64  `json:"weight"`
	PurchaseMoment string   `json:"purchase_moment"`
	TagCode        *string  `json:"tag_code,omitempty"`
	HeightCM       *float64 `json:"height_cm,omitempty"`
	WidthCM        *float64 `json:"width_cm,omitempty"`
	LengthCM       *float64 `json:"length_cm,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type operatorRequest struct {
	Operator string `json:"operator"`
}

type quoteItem struct {
	ID             uint    `json:"id"`
	Category       string  `json:"category"`
	Weight         float64 `json:"weight"`
	PurchaseMoment string  `json:"purchase_moment"`
}

type quoteRequest struct {
	Items []quoteItem `json:"items"`
}

type fareRulesResponse struct {
	Currency string               `json:"currency"`
	Rules    []entity.FareRuleSet `json:"rules"`
}

func (h *Handler) getOrCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	record, err := h.baggage.GetOrCreate(r.Context(), req.PassengerID, req.TicketID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := idParam(r, "recordID")
	if err != nil {
		writeError(w, err)
		return
	}
	record, items, err := h.baggage.GetRecord(r.Context(), recordID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Record: record, Items: items})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	recordID, err := idParam(r, "recordID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	item, err := h.baggage.AddItem(r.Context(), recordID, entity.NewBagItem{
		Category:       entity.BagCategory(req.Category),
		Weight:         req.Weight,
		PurchaseMoment: entity.PurchaseMoment(req.PurchaseMoment),
		TagCode:        req.TagCode,
		HeightCM:       req.HeightCM,
		WidthCM:        req.WidthCM,
		LengthCM:       req.LengthCM,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := idParam(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.baggage.RemoveItem(r.Context(), itemID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	itemID, err := idParam(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	item, err := h.baggage.UpdateItemStatus(r.Context(), itemID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	recordID, err := idParam(r, "recordID")
	if err != nil {
		writeError(w, err)
		return
	}
	readiness, err := h.baggage.IsReadyForCheckIn(r.Context(), recordID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readiness)
}

func (h *Handler) checkInBaggage(w http.ResponseWriter, r *http.Request) {
	recordID, err := idParam(r, "recordID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req operatorRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	record, err := h.baggage.ConfirmCheckedIn(r.Context(), recordID, req.Operator)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	recordID, err := idParam(r, "recordID")
	if err != nil {
		writeError(w, err)
		return
	}
	invoice, err := h.baggage.Invoice(r.Context(), recordID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	recordID, err := idParam(r, "recordID")
	if err != nil {
		writeError(w, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			writeError(w, fmt.Errorf("%w: limit must be a non-negative integer, got %q", entity.ErrInvalidKey, raw))
			return
		}
	}
	entries, err := h.baggage.History(r.Context(), recordID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) fareRules(w http.ResponseWriter, r *http.Request) {
	rules := h.baggage.Rules()
	writeJSON(w, http.StatusOK, fareRulesResponse{Currency: rules.Currency(), Rules: rules.All()})
}

func (h *Handler) quoteFare(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	items := make([]*entity.BagItem, 0, len(req.Items))
	for i, q := range req.Items {
		id := q.ID
		if id == 0 {
			id = uint(i + 1)
		}
		category, err := entity.ParseBagCategory(q.Category)
		if err != nil {
			writeError(w, err)
			return
		}
		if !(q.Weight > 0) {
			writeError(w, fmt.Errorf("%w: item %d weight must be greater than 0", entity.ErrInvalidWeight, id))
			return
		}
		items = append(items, &entity.BagItem{
			ID:             id,
			Category:       category,
			Weight:         entity.RoundWeight(q.Weight),
			PurchaseMoment: entity.PurchaseMoment(q.PurchaseMoment),
		})
	}
	breakdown, err := h.baggage.ComputeFare(items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) lookupReservation(w http.ResponseWriter, r *http.Request) {
	summary, err := h.checkIn.LookupReservation(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) confirmCheckIn(w http.ResponseWriter, r *http.Request) {
	var req operatorRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	event, err := h.checkIn.ConfirmCheckIn(r.Context(), chi.URLParam(r, "code"), req.Operator)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("Flight check-in confirmed over HTTP", "code", chi.URLParam(r, "code"), "eventID", event.ID)
	writeJSON(w, http.StatusCreated, event)
}
