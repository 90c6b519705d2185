package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/fare"
	"baggage-checkin-service/internal/domain/repository"
	"baggage-checkin-service/pkg/logger"
	"baggage-checkin-service/pkg/metrics"
)

// BaggageManager owns baggage records: lazy creation, item changes with
// aggregate recompute, readiness checks and the checked-in transition.
type BaggageManager struct {
	baggageRepo repository.BaggageRepository
	auditRepo   repository.AuditRepository
	rules       *fare.RuleTable
	metrics     *metrics.Metrics
	logger      logger.Logger
	timeout     time.Duration
	now         func() time.Time
}

// NewBaggageManager creates a new baggage manager. auditRepo may be nil.
func NewBaggageManager(
	baggageRepo repository.BaggageRepository,
	auditRepo repository.AuditRepository,
	rules *fare.RuleTable,
	metrics *metrics.Metrics,
	logger logger.Logger,
	timeout time.Duration,
) *BaggageManager {
	return &BaggageManager{
		baggageRepo: baggageRepo,
		auditRepo:   auditRepo,
		rules:       rules,
		metrics:     metrics,
		logger:      logger,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Rules exposes the injected fare rule table
func (m *BaggageManager) Rules() *fare.RuleTable {
	return m.rules
}

// GetOrCreate returns the record for (passenger, ticket), creating it on first access
func (m *BaggageManager) GetOrCreate(ctx context.Context, passengerID, ticketID uint) (*entity.BaggageRecord, error) {
	if passengerID == 0 || ticketID == 0 {
		return nil, fmt.Errorf("%w: passenger and ticket are required", entity.ErrInvalidKey)
	}
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()
	defer m.observe("get_or_create")()

	record, err := m.baggageRepo.GetOrCreate(ctx, passengerID, ticketID)
	if err != nil {
		m.fail("get_or_create", err)
		m.logger.Error("Failed to get or create baggage record", "passengerID", passengerID, "ticketID", ticketID, "error", err)
		return nil, err
	}
	return record, nil
}

// GetRecord returns the record with its live items ordered by key
func (m *BaggageManager) GetRecord(ctx context.Context, recordID uint) (*entity.BaggageRecord, []*entity.BagItem, error) {
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()
	return m.load(ctx, recordID)
}

// AddItem registers a piece. The weight is judged against the maximum of the
// piece's own purchase moment and rejected outright when above it. The content
// checks run under the record lock after the locked-state check, so a checked-in
// record answers ErrRecordLocked whatever the piece looks like.
func (m *BaggageManager) AddItem(ctx context.Context, recordID uint, item entity.NewBagItem) (*entity.BagItem, error) {
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()
	defer m.observe("add_item")()

	raw := item
	item.Weight = entity.RoundWeight(item.Weight)
	guard := func(*entity.BaggageRecord) error {
		if err := raw.Validate(); err != nil {
			return err
		}
		return m.rules.CheckWeight(0, item.Weight, item.PurchaseMoment)
	}

	created, record, err := m.baggageRepo.AddItem(ctx, recordID, item, guard)
	if err != nil {
		if kind := entity.Kind(err); kind == entity.KindValidation || kind == entity.KindState {
			m.reject(recordID, raw, err)
		} else {
			m.fail("add_item", err)
			m.logger.Error("Failed to add bag item", "recordID", recordID, "error", err)
		}
		return nil, err
	}

	m.metrics.ItemsAdded.Inc()
	m.logger.Info("Bag item added",
		"recordID", recordID,
		"itemID", created.ID,
		"category", created.Category,
		"weight", created.Weight,
		"moment", created.PurchaseMoment,
		"itemCount", record.ItemCount,
		"totalWeight", record.TotalWeight)

	journal(ctx, m.auditRepo, m.logger, &entity.AuditEntry{
		Action:   entity.AuditItemAdded,
		RecordID: recordID,
		ItemID:   created.ID,
		Payload: map[string]interface{}{
			"category":    string(created.Category),
			"weight":      created.Weight,
			"moment":      string(created.PurchaseMoment),
			"itemCount":   record.ItemCount,
			"totalWeight": record.TotalWeight,
		},
		OccurredAt: m.now(),
	})

	return created, nil
}

// RemoveItem deletes a piece from a record that is still registered
func (m *BaggageManager) RemoveItem(ctx context.Context, itemID uint) error {
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()
	defer m.observe("remove_item")()

	removed, record, err := m.baggageRepo.RemoveItem(ctx, itemID)
	if err != nil {
		if entity.Kind(err) == entity.KindState || entity.Kind(err) == entity.KindNotFound {
			m.logger.Warn("Bag item removal refused", "itemID", itemID, "error", err)
		} else {
			m.fail("remove_item", err)
			m.logger.Error("Failed to remove bag item", "itemID", itemID, "error", err)
		}
		return err
	}

	m.metrics.ItemsRemoved.Inc()
	m.logger.Info("Bag item removed",
		"recordID", record.ID,
		"itemID", itemID,
		"itemCount", record.ItemCount,
		"totalWeight", record.TotalWeight)

	journal(ctx, m.auditRepo, m.logger, &entity.AuditEntry{
		Action:   entity.AuditItemRemoved,
		RecordID: record.ID,
		ItemID:   removed.ID,
		Payload: map[string]interface{}{
			"weight":      removed.Weight,
			"itemCount":   record.ItemCount,
			"totalWeight": record.TotalWeight,
		},
		OccurredAt: m.now(),
	})
	return nil
}

// UpdateItemStatus changes a piece's free-text operational tag.
// The tag is outside the state machine, so checked-in records accept it too.
func (m *BaggageManager) UpdateItemStatus(ctx context.Context, itemID uint, status string) (*entity.BagItem, error) {
	status, err := entity.NormalizeItemStatus(status)
	if err != nil {
		return nil, err
	}
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()
	defer m.observe("update_item_status")()

	item, err := m.baggageRepo.UpdateItemStatus(ctx, itemID, status)
	if err != nil {
		if entity.Kind(err) == entity.KindNotFound {
			m.logger.Warn("Bag item status update refused", "itemID", itemID, "error", err)
		} else {
			m.fail("update_item_status", err)
			m.logger.Error("Failed to update bag item status", "itemID", itemID, "error", err)
		}
		return nil, err
	}

	m.logger.Info("Bag item status updated", "recordID", item.BaggageRecordID, "itemID", item.ID, "status", status)

	journal(ctx, m.auditRepo, m.logger, &entity.AuditEntry{
		Action:     entity.AuditItemStatusChanged,
		RecordID:   item.BaggageRecordID,
		ItemID:     item.ID,
		Payload:    map[string]interface{}{"status": status},
		OccurredAt: m.now(),
	})
	return item, nil
}

// IsReadyForCheckIn answers whether the record may be finalized, and why not
func (m *BaggageManager) IsReadyForCheckIn(ctx context.Context, recordID uint) (entity.Readiness, error) {
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()

	record, items, err := m.load(ctx, recordID)
	if err != nil {
		return entity.Readiness{}, err
	}
	return m.readiness(record, items)
}

// ConfirmCheckedIn finalizes the record. The readiness check runs inside the
// same locked write, so no item can slip in between the check and the transition.
func (m *BaggageManager) ConfirmCheckedIn(ctx context.Context, recordID uint, operatorID string) (*entity.BaggageRecord, error) {
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()
	defer m.observe("confirm_checked_in")()

	operatorID, err := entity.NormalizeOperator(operatorID)
	if err != nil {
		return nil, err
	}
	guard := func(record *entity.BaggageRecord, items []*entity.BagItem) error {
		r, err := m.readiness(record, items)
		if err != nil {
			return err
		}
		if !r.Ready {
			return &entity.NotReadyError{Reason: r}
		}
		return nil
	}

	record, err := m.baggageRepo.CheckIn(ctx, recordID, operatorID, m.now().UTC(), guard)
	if err != nil {
		var notReady *entity.NotReadyError
		if errors.As(err, &notReady) {
			m.logger.Warn("Baggage check-in refused", "recordID", recordID, "reason", notReady.Reason.Code, "message", notReady.Reason.Message)
		} else {
			m.fail("confirm_checked_in", err)
			m.logger.Error("Failed to check in baggage", "recordID", recordID, "error", err)
		}
		return nil, err
	}

	m.metrics.BaggageCheckedIn.Inc()
	m.logger.Info("Baggage checked in", "recordID", recordID, "operator", operatorID, "itemCount", record.ItemCount, "totalWeight", record.TotalWeight)

	journal(ctx, m.auditRepo, m.logger, &entity.AuditEntry{
		Action:   entity.AuditBaggageCheckedIn,
		RecordID: recordID,
		Operator: operatorID,
		Payload: map[string]interface{}{
			"itemCount":   record.ItemCount,
			"totalWeight": record.TotalWeight,
		},
		OccurredAt: m.now(),
	})
	return record, nil
}

// ComputeFare prices an arbitrary item list with the injected rules
func (m *BaggageManager) ComputeFare(items []*entity.BagItem) (*entity.FareBreakdown, error) {
	breakdown, err := fare.Compute(m.rules, items)
	if err != nil {
		return nil, err
	}
	m.metrics.FareTotal.Observe(float64(breakdown.Total))
	return breakdown, nil
}

// Invoice builds the document view of a record. It only reads; a record that is
// still registered yields a pro-forma invoice.
func (m *BaggageManager) Invoice(ctx context.Context, recordID uint) (*entity.Invoice, error) {
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()

	record, items, err := m.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	breakdown, err := m.ComputeFare(items)
	if err != nil {
		return nil, err
	}
	return &entity.Invoice{
		Record:    record,
		Items:     items,
		Breakdown: breakdown,
		Proforma:  !record.IsCheckedIn(),
	}, nil
}

// History returns the journal entries of a record, newest first.
// Without an audit journal it returns an empty list.
func (m *BaggageManager) History(ctx context.Context, recordID uint, limit int) ([]*entity.AuditEntry, error) {
	if m.auditRepo == nil {
		return []*entity.AuditEntry{}, nil
	}
	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()
	if _, err := m.baggageRepo.FindByID(ctx, recordID); err != nil {
		return nil, err
	}
	return m.auditRepo.ListByRecord(ctx, recordID, limit)
}

func (m *BaggageManager) load(ctx context.Context, recordID uint) (*entity.BaggageRecord, []*entity.BagItem, error) {
	record, err := m.baggageRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	items, err := m.baggageRepo.ListItems(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	return record, items, nil
}

// contentReadiness checks the pieces alone: at least one, none above its moment's maximum
func (m *BaggageManager) contentReadiness(items []*entity.BagItem) (entity.Readiness, error) {
	if len(items) == 0 {
		return entity.NoItems(), nil
	}
	for _, item := range items {
		err := m.rules.CheckWeight(item.ID, item.Weight, item.PurchaseMoment)
		var tooHeavy *entity.WeightExceedsMaximumError
		switch {
		case err == nil:
		case errors.As(err, &tooHeavy):
			return entity.ExcessWeight(item, tooHeavy.Maximum), nil
		default:
			return entity.Readiness{}, fmt.Errorf("item %d: %w", item.ID, err)
		}
	}
	return entity.Ready(), nil
}

// readiness applies the full rule in priority order: no items, excess weight, already checked in
func (m *BaggageManager) readiness(record *entity.BaggageRecord, items []*entity.BagItem) (entity.Readiness, error) {
	r, err := m.contentReadiness(items)
	if err != nil || !r.Ready {
		return r, err
	}
	if record.IsCheckedIn() {
		return entity.AlreadyCheckedIn(), nil
	}
	return entity.Ready(), nil
}

func (m *BaggageManager) reject(recordID uint, item entity.NewBagItem, err error) {
	m.metrics.ItemsRejected.WithLabelValues(string(entity.Kind(err))).Inc()
	m.logger.Warn("Bag item rejected",
		"recordID", recordID,
		"category", item.Category,
		"weight", item.Weight,
		"moment", item.PurchaseMoment,
		"error", err)
}

func (m *BaggageManager) fail(op string, err error) {
	m.metrics.ErrorsCount.WithLabelValues(op, string(entity.Kind(err))).Inc()
}

func (m *BaggageManager) observe(op string) func() {
	start := time.Now()
	return func() {
		m.metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
