// Package services orchestrates ledger writes across storage and the event
// bus.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/ports"
)

// Store is the persistence the service needs.
type Store interface {
	ports.Ledger
	ListAllExpenses(ctx context.Context) ([]core.Expense, error)
	ListAllIncome(ctx context.Context) ([]core.Income, error)
	Ping(ctx context.Context) error
}

// EventPublisher publishes record events. amqp.Client implements it.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error
}

// ValidationError is returned for create payloads the domain rejects.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// LedgerService persists first and then publishes. Publish failures are
// logged and never fail the operation: the database is the source of truth.
type LedgerService struct {
	store     Store
	publisher EventPublisher
	logger    *slog.Logger
}

var _ ports.Ledger = (*LedgerService)(nil)

// NewLedgerService builds a service. publisher may be nil when AMQP is disabled.
func NewLedgerService(store Store, publisher EventPublisher, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{store: store, publisher: publisher, logger: logger}
}

func (s *LedgerService) CreateExpense(ctx context.Context, e core.NewExpense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, &ValidationError{Err: err}
	}
	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	s.publish(ctx, amqp.ExpenseCreated(id, e))
	return id, nil
}

func (s *LedgerService) CreateIncome(ctx context.Context, i core.NewIncome) (int64, error) {
	if err := i.Validate(); err != nil {
		return 0, &ValidationError{Err: err}
	}
	id, err := s.store.CreateIncome(ctx, i)
	if err != nil {
		return 0, fmt.Errorf("save income: %w", err)
	}
	s.publish(ctx, amqp.IncomeCreated(id, i))
	return id, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.RecordDeleted(amqp.KindExpense, id))
	return nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id int64) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.RecordDeleted(amqp.KindIncome, id))
	return nil
}

func (s *LedgerService) ListExpenses(ctx context.Context, p core.Period) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, p)
}

func (s *LedgerService) ListIncome(ctx context.Context, p core.Period) ([]core.Income, error) {
	return s.store.ListIncome(ctx, p)
}

func (s *LedgerService) ListAllExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListAllExpenses(ctx)
}

func (s *LedgerService) ListAllIncome(ctx context.Context) ([]core.Income, error) {
	return s.store.ListAllIncome(ctx)
}

func (s *LedgerService) Summary(ctx context.Context, p core.Period) (core.MonthSummary, error) {
	return s.store.Summary(ctx, p)
}

func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.RecordEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP disabled, skipping record event",
			"type", ev.Type, "record_kind", ev.Kind, "record_id", ev.RecordID)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record event", log.NewFields().
			WithOperation(log.OpPublish).
			WithRecord(string(ev.Kind), ev.RecordID).
			WithError(err).
			ToSlice()...)
	}
}

// IsValidation reports whether err is a rejected create payload.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
