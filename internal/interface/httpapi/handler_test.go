package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/fare"
	"baggage-checkin-service/internal/usecase"
	"baggage-checkin-service/pkg/logger"
	"baggage-checkin-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// stubBaggage answers from canned values; zero-value fields mean "not called in this test"
type stubBaggage struct {
	record    *entity.BaggageRecord
	items     []*entity.BagItem
	item      *entity.BagItem
	readiness entity.Readiness
	invoice   *entity.Invoice
	history   []*entity.AuditEntry
	err       error

	gotItem      entity.NewBagItem
	gotRequestID string
	gotOperator  string
	gotLimit     int
}

func (s *stubBaggage) GetOrCreate(ctx context.Context, passengerID, ticketID uint) (*entity.BaggageRecord, error) {
	if passengerID == 0 || ticketID == 0 {
		return nil, entity.ErrInvalidKey
	}
	return s.record, s.err
}

func (s *stubBaggage) GetRecord(ctx context.Context, recordID uint) (*entity.BaggageRecord, []*entity.BagItem, error) {
	return s.record, s.items, s.err
}

func (s *stubBaggage) AddItem(ctx context.Context, recordID uint, item entity.NewBagItem) (*entity.BagItem, error) {
	s.gotItem = item
	s.gotRequestID = usecase.RequestIDFromContext(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return s.item, nil
}

func (s *stubBaggage) RemoveItem(ctx context.Context, itemID uint) error {
	return s.err
}

func (s *stubBaggage) UpdateItemStatus(ctx context.Context, itemID uint, status string) (*entity.BagItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.item.Status = status
	return s.item, nil
}

func (s *stubBaggage) IsReadyForCheckIn(ctx context.Context, recordID uint) (entity.Readiness, error) {
	return s.readiness, s.err
}

func (s *stubBaggage) ConfirmCheckedIn(ctx context.Context, recordID uint, operatorID string) (*entity.BaggageRecord, error) {
	s.gotOperator = operatorID
	return s.record, s.err
}

func (s *stubBaggage) ComputeFare(items []*entity.BagItem) (*entity.FareBreakdown, error) {
	return fare.Compute(fare.DefaultRuleTable(), items)
}

func (s *stubBaggage) Invoice(ctx context.Context, recordID uint) (*entity.Invoice, error) {
	return s.invoice, s.err
}

func (s *stubBaggage) History(ctx context.Context, recordID uint, limit int) ([]*entity.AuditEntry, error) {
	s.gotLimit = limit
	return s.history, s.err
}

func (s *stubBaggage) Rules() *fare.RuleTable {
	return fare.DefaultRuleTable()
}

type stubCheckIn struct {
	summary *entity.ReservationSummary
	event   *entity.CheckInEvent
	err     error
}

func (s *stubCheckIn) LookupReservation(ctx context.Context, code string) (*entity.ReservationSummary, error) {
	return s.summary, s.err
}

func (s *stubCheckIn) ConfirmCheckIn(ctx context.Context, code string, operatorID string) (*entity.CheckInEvent, error) {
	return s.event, s.err
}

func newTestServer(b *stubBaggage, c *stubCheckIn) (http.Handler, *metrics.Metrics) {
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
	log := logger.NewNop()
	return NewRouter(NewHandler(b, c, log), m, log, nil), m
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestAddItem(t *testing.T) {
	b := &stubBaggage{item: &entity.BagItem{ID: 9, BaggageRecordID: 4, Category: entity.CategoryHold, Weight: 20, PurchaseMoment: entity.MomentWeb, Status: "registered"}}
	h, m := newTestServer(b, &stubCheckIn{})

	rec := do(t, h, http.MethodPost, "/api/v1/baggage/4/items", map[string]any{
		"category":        "hold",
		"weight":          20,
		"purchase_moment": "web",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var item entity.BagItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.ID != 9 || item.Category != entity.CategoryHold {
		t.Errorf("item = %+v", item)
	}
	if b.gotItem.PurchaseMoment != entity.MomentWeb || b.gotItem.Weight != 20 {
		t.Errorf("service received %+v", b.gotItem)
	}

	requestID := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(requestID); err != nil {
		t.Errorf("response request id %q is not a UUID", requestID)
	}
	if b.gotRequestID != requestID {
		t.Errorf("context request id = %q, header = %q", b.gotRequestID, requestID)
	}

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodPost, "/api/v1/baggage/{recordID}/items", "201")); got != 1 {
		t.Errorf("http requests metric = %v, want 1", got)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	b := &stubBaggage{item: &entity.BagItem{ID: 1}}
	h, _ := newTestServer(b, &stubCheckIn{})

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/baggage/1/items", bytes.NewBufferString(`{"category":"hold","weight":5,"purchase_moment":"web"}`))
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) != id || b.gotRequestID != id {
		t.Fatalf("request id not propagated: header %q, context %q", rec.Header().Get(RequestIDHeader), b.gotRequestID)
	}
}

func TestAddItemTooHeavy(t *testing.T) {
	b := &stubBaggage{err: &entity.WeightExceedsMaximumError{Weight: 30, Maximum: 25, Moment: entity.MomentCheckIn}}
	h, _ := newTestServer(b, &stubCheckIn{})

	rec := do(t, h, http.MethodPost, "/api/v1/baggage/4/items", map[string]any{
		"category":        "hold",
		"weight":          30,
		"purchase_moment": "checkin",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Code != "weight_exceeds_maximum" || detail.Maximum == nil || *detail.Maximum != 25 || detail.Moment != "checkin" {
		t.Fatalf("error = %+v", detail)
	}
}

func TestMalformedRequests(t *testing.T) {
	h, _ := newTestServer(&stubBaggage{}, &stubCheckIn{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"non-numeric record id", http.MethodGet, "/api/v1/baggage/abc", nil},
		{"zero item id", http.MethodDelete, "/api/v1/baggage/items/0", nil},
		{"unknown field", http.MethodPost, "/api/v1/baggage/1/items", map[string]any{"colour": "red"}},
		{"missing keys", http.MethodPost, "/api/v1/baggage", map[string]any{"passenger_id": 1}},
		{"bad limit", http.MethodGet, "/api/v1/baggage/1/audit?limit=-2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if detail := decodeError(t, rec); detail.Code != "invalid_key" {
				t.Errorf("code = %q, want invalid_key", detail.Code)
			}
		})
	}
}

func TestCheckInBaggageNotReady(t *testing.T) {
	b := &stubBaggage{err: &entity.NotReadyError{Reason: entity.NoItems()}}
	h, _ := newTestServer(b, &stubCheckIn{})

	rec := do(t, h, http.MethodPost, "/api/v1/baggage/4/check-in", map[string]string{"operator": "desk-3"})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Code != "not_ready" || detail.Readiness == nil || detail.Readiness.Message != "no items" {
		t.Fatalf("error = %+v", detail)
	}
	if b.gotOperator != "desk-3" {
		t.Errorf("operator = %q, want desk-3", b.gotOperator)
	}
}

func TestCheckInBaggageWithoutBody(t *testing.T) {
	b := &stubBaggage{record: &entity.BaggageRecord{ID: 4, Status: entity.BaggageCheckedIn}}
	h, _ := newTestServer(b, &stubCheckIn{})

	rec := do(t, h, http.MethodPost, "/api/v1/baggage/4/check-in", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestConfirmCheckInResponses(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubCheckIn
		status int
		code   string
	}{
		{"confirmed", &stubCheckIn{event: &entity.CheckInEvent{ID: 1, Status: entity.CheckInConfirmed}}, http.StatusCreated, ""},
		{"baggage refused", &stubCheckIn{err: &entity.BaggageNotReadyError{Reason: entity.NotCheckedIn()}}, http.StatusConflict, "baggage_not_ready"},
		{"already confirmed", &stubCheckIn{err: entity.ErrAlreadyConfirmed}, http.StatusConflict, "already_confirmed"},
		{"unknown reservation", &stubCheckIn{err: entity.ErrReservationNotFound}, http.StatusNotFound, "reservation_not_found"},
		{"store down", &stubCheckIn{err: &entity.TransientError{Op: "find reservation", Err: context.DeadlineExceeded}}, http.StatusServiceUnavailable, "store_unavailable"},
		{"unexpected", &stubCheckIn{err: errors.New("boom")}, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestServer(&stubBaggage{}, tt.stub)
			rec := do(t, h, http.MethodPost, "/api/v1/reservations/ABC123/check-in", map[string]string{"operator": "desk-1"})
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code != "" {
				if detail := decodeError(t, rec); detail.Code != tt.code {
					t.Errorf("code = %q, want %q", detail.Code, tt.code)
				}
			}
		})
	}
}

func TestQuoteFare(t *testing.T) {
	h, _ := newTestServer(&stubBaggage{}, &stubCheckIn{})

	rec := do(t, h, http.MethodPost, "/api/v1/fares/quote", map[string]any{
		"items": []map[string]any{
			{"id": 1, "category": "hold", "weight": 20, "purchase_moment": "web"},
			{"id": 2, "category": "special", "weight": 10, "purchase_moment": "checkin"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var breakdown entity.FareBreakdown
	if err := json.Unmarshal(rec.Body.Bytes(), &breakdown); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if breakdown.Total != 3000+10000 || len(breakdown.Lines) != 3 {
		t.Fatalf("breakdown = %+v", breakdown)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/fares/quote", map[string]any{"items": []any{}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty quote status = %d, want 422", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Code != "empty_baggage_list" {
		t.Errorf("code = %q, want empty_baggage_list", detail.Code)
	}
}

func TestFareRules(t *testing.T) {
	h, _ := newTestServer(&stubBaggage{}, &stubCheckIn{})

	rec := do(t, h, http.MethodGet, "/api/v1/fares", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body fareRulesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Currency != fare.DefaultCurrency || len(body.Rules) != len(entity.PurchaseMoments) {
		t.Fatalf("rules = %+v", body)
	}
}

func TestHistoryPassesLimit(t *testing.T) {
	b := &stubBaggage{history: []*entity.AuditEntry{{Action: entity.AuditItemAdded, RecordID: 4}}}
	h, _ := newTestServer(b, &stubCheckIn{})

	rec := do(t, h, http.MethodGet, "/api/v1/baggage/4/audit?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if b.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", b.gotLimit)
	}
}

func TestRemoveItem(t *testing.T) {
	h, _ := newTestServer(&stubBaggage{}, &stubCheckIn{})
	if rec := do(t, h, http.MethodDelete, "/api/v1/baggage/items/3", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	h, _ = newTestServer(&stubBaggage{err: entity.ErrRecordLocked}, &stubCheckIn{})
	rec := do(t, h, http.MethodDelete, "/api/v1/baggage/items/3", nil)
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != "record_locked" {
		t.Fatalf("locked removal: status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(&stubBaggage{}, &stubCheckIn{})
	rec := do(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "Healthy" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}
