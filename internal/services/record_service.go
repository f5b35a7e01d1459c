package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"despesas/internal/amqp"
	"despesas/internal/core"
	applog "despesas/internal/log"
)

// Repository is the record store used by the service.
type Repository interface {
	Create(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error)
	Get(ctx context.Context, id int64) (core.ExpenseRecord, error)
	List(ctx context.Context) ([]core.ExpenseRecord, error)
	ListByMonth(ctx context.Context, p core.Period) ([]core.ExpenseRecord, error)
	Update(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Publisher announces record changes. Implemented by *amqp.Client.
type Publisher interface {
	Publish(ctx context.Context, eventType amqp.EventType, id int64, period string) error
}

// RecordService runs the record lifecycle: derive fields, persist, announce.
type RecordService struct {
	repo      Repository
	publisher Publisher
}

// NewRecordService wires a repository and an optional publisher (nil disables events).
func NewRecordService(repo Repository, publisher Publisher) *RecordService {
	return &RecordService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *RecordService) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *RecordService) ListByMonth(ctx context.Context, p core.Period) ([]core.ExpenseRecord, error) {
	records, err := s.repo.ListByMonth(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", p, err)
	}
	return records, nil
}

func (s *RecordService) Get(ctx context.Context, id int64) (core.ExpenseRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Create derives total and amountToPay from in and inserts a new record.
func (s *RecordService) Create(ctx context.Context, in core.RecordInput) (core.ExpenseRecord, error) {
	rec := core.ExpenseRecord{Period: in.Period, Categories: in.Categories}
	beforeSave(&rec, in, nil)
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("check record: %w", err)
	}

	saved, err := s.repo.Create(ctx, rec)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save record: %w", err)
	}

	s.logSaved(ctx, applog.OpCreate, saved)
	s.publish(ctx, amqp.EventUpsert, saved)
	return saved, nil
}

// Update overwrites every mutable field of the record with id. Omitted
// categories become zero.
func (s *RecordService) Update(ctx context.Context, id int64, in core.RecordInput) (core.ExpenseRecord, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("load record: %w", err)
	}

	rec := core.ExpenseRecord{ID: id, Period: in.Period, Categories: in.Categories}
	beforeSave(&rec, in, &existing)
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("check record: %w", err)
	}

	saved, err := s.repo.Update(ctx, rec)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save record: %w", err)
	}

	s.logSaved(ctx, applog.OpUpdate, saved)
	s.publish(ctx, amqp.EventUpsert, saved)
	return saved, nil
}

func (s *RecordService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	slog.InfoContext(ctx, "Record deleted",
		applog.FieldComponent, applog.ComponentRecord,
		applog.FieldOperation, applog.OpDelete,
		applog.FieldRecordID, id)
	s.publish(ctx, amqp.EventDelete, core.ExpenseRecord{ID: id})
	return nil
}

// Preview computes the derived figures of in without touching the store.
func (s *RecordService) Preview(in core.RecordInput) core.Summary {
	return core.Summarize(in)
}

// Ready reports whether the store can serve requests.
func (s *RecordService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// beforeSave computes the derived fields immediately before a write.
//
// An explicit amountToPay is kept. An omitted one on create, or an explicit
// null, falls back to total. An omitted one on update keeps the stored value
// only if that value was itself explicit.
func beforeSave(rec *core.ExpenseRecord, in core.RecordInput, existing *core.ExpenseRecord) {
	rec.Total = rec.Categories.Total()

	switch {
	case in.AmountToPay != nil:
		rec.AmountToPay = *in.AmountToPay
		rec.AmountToPayExplicit = true
	case !in.AmountToPayPresent && existing != nil && existing.AmountToPayExplicit:
		rec.AmountToPay = existing.AmountToPay
		rec.AmountToPayExplicit = true
	default:
		rec.AmountToPay = rec.Total
		rec.AmountToPayExplicit = false
	}
}

func (s *RecordService) logSaved(ctx context.Context, op string, rec core.ExpenseRecord) {
	fields := applog.NewFields().
		WithOperation(op).
		WithRecord(rec.ID, rec.Period.String(), core.FormatAmount(rec.Total), core.FormatAmount(rec.AmountToPay))
	slog.InfoContext(ctx, "Record saved",
		append([]any{applog.FieldComponent, applog.ComponentRecord}, fields.ToSlice()...)...)
}

// publish is best effort: the record is already persisted.
func (s *RecordService) publish(ctx context.Context, eventType amqp.EventType, rec core.ExpenseRecord) {
	if s.publisher == nil {
		return
	}
	period := ""
	if !rec.Period.IsZero() {
		period = rec.Period.String()
	}
	if err := s.publisher.Publish(ctx, eventType, rec.ID, period); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			applog.FieldComponent, applog.ComponentRecord,
			applog.FieldOperation, applog.OpPublish,
			applog.FieldRecordID, rec.ID,
			applog.FieldEventType, eventType,
			applog.FieldError, err)
	}
}

// Close releases the store and the publisher when they hold resources.
func (s *RecordService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
