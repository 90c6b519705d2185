package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/repository"
	"baggage-checkin-service/pkg/logger"
	"baggage-checkin-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// memBaggageRepo keeps records and items in maps; one mutex stands in for the row lock
type memBaggageRepo struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]*entity.BaggageRecord
	items   map[uint]*entity.BagItem
	failAll error
}

func newMemBaggageRepo() *memBaggageRepo {
	return &memBaggageRepo{
		records: make(map[uint]*entity.BaggageRecord),
		items:   make(map[uint]*entity.BagItem),
	}
}

func (r *memBaggageRepo) id() uint {
	r.nextID++
	return r.nextID
}

func copyRecord(rec *entity.BaggageRecord) *entity.BaggageRecord {
	c := *rec
	return &c
}

func copyItem(item *entity.BagItem) *entity.BagItem {
	c := *item
	return &c
}

func (r *memBaggageRepo) GetOrCreate(ctx context.Context, passengerID, ticketID uint) (*entity.BaggageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, rec := range r.records {
		if rec.PassengerID == passengerID && rec.TicketID == ticketID {
			return copyRecord(rec), nil
		}
	}
	now := time.Now()
	rec := &entity.BaggageRecord{
		ID:          r.id(),
		PassengerID: passengerID,
		TicketID:    ticketID,
		Status:      entity.BaggageRegistered,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.records[rec.ID] = rec
	return copyRecord(rec), nil
}

func (r *memBaggageRepo) FindByID(ctx context.Context, recordID uint) (*entity.BaggageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	rec, ok := r.records[recordID]
	if !ok {
		return nil, entity.ErrRecordNotFound
	}
	return copyRecord(rec), nil
}

func (r *memBaggageRepo) ListItems(ctx context.Context, recordID uint) ([]*entity.BagItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	return r.listLocked(recordID), nil
}

func (r *memBaggageRepo) listLocked(recordID uint) []*entity.BagItem {
	items := make([]*entity.BagItem, 0)
	for _, item := range r.items {
		if item.BaggageRecordID == recordID {
			items = append(items, copyItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (r *memBaggageRepo) FindItem(ctx context.Context, itemID uint) (*entity.BagItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, entity.ErrItemNotFound
	}
	return copyItem(item), nil
}

func (r *memBaggageRepo) AddItem(ctx context.Context, recordID uint, n entity.NewBagItem, guard repository.ItemGuard) (*entity.BagItem, *entity.BaggageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, nil, r.failAll
	}
	rec, ok := r.records[recordID]
	if !ok {
		return nil, nil, entity.ErrRecordNotFound
	}
	if rec.IsCheckedIn() {
		return nil, nil, entity.ErrRecordLocked
	}
	if guard != nil {
		if err := guard(copyRecord(rec)); err != nil {
			return nil, nil, err
		}
	}
	item := &entity.BagItem{
		ID:              r.id(),
		BaggageRecordID: recordID,
		Category:        n.Category,
		Weight:          n.Weight,
		PurchaseMoment:  n.PurchaseMoment,
		Status:          entity.DefaultItemStatus,
		TagCode:         n.TagCode,
		HeightCM:        n.HeightCM,
		WidthCM:         n.WidthCM,
		LengthCM:        n.LengthCM,
		CreatedAt:       time.Now(),
	}
	r.items[item.ID] = item
	r.recomputeLocked(rec)
	return copyItem(item), copyRecord(rec), nil
}

func (r *memBaggageRepo) RemoveItem(ctx context.Context, itemID uint) (*entity.BagItem, *entity.BaggageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, nil, r.failAll
	}
	item, ok := r.items[itemID]
	if !ok {
		return nil, nil, entity.ErrItemNotFound
	}
	rec := r.records[item.BaggageRecordID]
	if rec.IsCheckedIn() {
		return nil, nil, entity.ErrRecordLocked
	}
	delete(r.items, itemID)
	r.recomputeLocked(rec)
	return copyItem(item), copyRecord(rec), nil
}

// recomputeLocked sums weights in key order, the order the store would read them in
func (r *memBaggageRepo) recomputeLocked(rec *entity.BaggageRecord) {
	items := r.listLocked(rec.ID)
	total := 0.0
	for _, item := range items {
		total += item.Weight
	}
	rec.ItemCount = len(items)
	rec.TotalWeight = entity.RoundWeight(total)
	rec.UpdatedAt = time.Now()
}

func (r *memBaggageRepo) UpdateItemStatus(ctx context.Context, itemID uint, status string) (*entity.BagItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	item, ok := r.items[itemID]
	if !ok {
		return nil, entity.ErrItemNotFound
	}
	item.Status = status
	return copyItem(item), nil
}

func (r *memBaggageRepo) CheckIn(ctx context.Context, recordID uint, operator string, at time.Time, guard repository.CheckInGuard) (*entity.BaggageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	rec, ok := r.records[recordID]
	if !ok {
		return nil, entity.ErrRecordNotFound
	}
	if err := guard(copyRecord(rec), r.listLocked(recordID)); err != nil {
		return nil, err
	}
	next, err := rec.Status.Transition(entity.BaggageCheckedIn)
	if err != nil {
		return nil, err
	}
	rec.Status = next
	if operator != "" {
		rec.CheckedInBy = &operator
	}
	rec.CheckedInAt = &at
	return copyRecord(rec), nil
}

// memReservations backs both the reservation and the check-in fakes
type memReservations struct {
	mu           sync.Mutex
	reservations map[string]*entity.Reservation
	events       []*entity.CheckInEvent
	nextEventID  uint
}

func newMemReservations() *memReservations {
	return &memReservations{reservations: make(map[string]*entity.Reservation)}
}

func (s *memReservations) add(res *entity.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[res.Code] = res
}

func (s *memReservations) FindByCode(ctx context.Context, code string) (*entity.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[code]
	if !ok {
		return nil, entity.ErrReservationNotFound
	}
	c := *res
	return &c, nil
}

func (s *memReservations) Confirm(ctx context.Context, event *entity.CheckInEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, res := range s.reservations {
		if res.ID != event.ReservationID {
			continue
		}
		if res.CheckInDone {
			return entity.ErrAlreadyConfirmed
		}
		res.CheckInDone = true
		s.nextEventID++
		stored := *event
		stored.ID = s.nextEventID
		event.ID = stored.ID
		s.events = append(s.events, &stored)
		return nil
	}
	return entity.ErrReservationNotFound
}

func (s *memReservations) LatestByReservation(ctx context.Context, reservationID uint) (*entity.CheckInEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *entity.CheckInEvent
	for _, e := range s.events {
		if e.ReservationID == reservationID {
			c := *e
			latest = &c
		}
	}
	return latest, nil
}

func (s *memReservations) CountByReservation(ctx context.Context, reservationID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if e.ReservationID == reservationID {
			n++
		}
	}
	return n, nil
}

func (s *memReservations) flag(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[code].CheckInDone
}

// memAudit records journal entries and can be told to fail
type memAudit struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
	err     error
}

func (a *memAudit) Append(ctx context.Context, entry *entity.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	c := *entry
	a.entries = append(a.entries, &c)
	return nil
}

func (a *memAudit) ListByRecord(ctx context.Context, recordID uint, limit int) ([]*entity.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*entity.AuditEntry, 0)
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].RecordID == recordID {
			out = append(out, a.entries[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *memAudit) actions() []entity.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]entity.AuditAction, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
}

func newTestLogger() logger.Logger {
	return logger.NewNop()
}

var errStoreDown = &entity.TransientError{Op: "test", Err: errors.New("connection refused")}
