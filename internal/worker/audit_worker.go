package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
)

// Tally is the running count of records created in one month.
type Tally struct {
	Expenses      int
	Income        int
	ExpensesTotal core.Amount
	IncomeTotal   core.Amount
}

// AuditWorker records every ledger event in the audit log and keeps
// per-month counters of created records. Redelivered events are counted once.
type AuditWorker struct {
	logger *slog.Logger

	mu      sync.Mutex
	months  map[core.Period]*Tally
	deleted map[amqp.RecordKind]int
	seen    *cache.LRUCache[struct{}]
	handled int
}

// NewAuditWorker remembers up to dedupeSize event ids for dedupeTTL.
func NewAuditWorker(logger *slog.Logger, dedupeSize int, dedupeTTL time.Duration) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{
		logger:  logger.With(log.FieldComponent, log.ComponentWorker),
		months:  make(map[core.Period]*Tally),
		deleted: make(map[amqp.RecordKind]int),
		seen:    cache.NewLRUCache[struct{}](dedupeSize, dedupeTTL),
	}
}

// Seen exposes the dedupe cache so the caller can register it for sweeping.
func (w *AuditWorker) Seen() cache.Cleaner {
	return w.seen
}

// HandleRecordEvent is an amqp.Handler.
func (w *AuditWorker) HandleRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid record event: %w", err)
	}

	w.mu.Lock()
	if ev.EventID != "" {
		if _, dup := w.seen.Get(ev.EventID); dup {
			w.mu.Unlock()
			w.logger.DebugContext(ctx, "Skipping duplicate record event", "event_id", ev.EventID)
			return nil
		}
		w.seen.Set(ev.EventID, struct{}{})
	}
	w.handled++

	attrs := []any{
		"event_id", ev.EventID,
		log.FieldRecordKind, string(ev.Kind),
		log.FieldRecordID, ev.RecordID,
		"occurred_at", ev.OccurredAt,
	}

	switch ev.Type {
	case amqp.EventCreated:
		p, ok := ev.Period()
		if !ok {
			// Redelivery cannot fix a missing date; log it and ack.
			w.mu.Unlock()
			w.logger.WarnContext(ctx, "Created record event without a valid date", attrs...)
			return nil
		}
		t := w.tally(p)
		var amount core.Amount
		if ev.Amount != nil {
			amount = *ev.Amount
		}
		switch ev.Kind {
		case amqp.KindExpense:
			t.Expenses++
			t.ExpensesTotal = core.Amount{Decimal: t.ExpensesTotal.Add(amount.Decimal)}
		case amqp.KindIncome:
			t.Income++
			t.IncomeTotal = core.Amount{Decimal: t.IncomeTotal.Add(amount.Decimal)}
		}
		w.mu.Unlock()

		attrs = append(attrs,
			log.FieldAmount, amount.StringFixed(2),
			log.FieldDate, ev.Date,
			"label", ev.Label)
		w.logger.InfoContext(ctx, "Audit: record created", attrs...)

	case amqp.EventDeleted:
		w.deleted[ev.Kind]++
		w.mu.Unlock()
		w.logger.InfoContext(ctx, "Audit: record deleted", attrs...)
	}
	return nil
}

func (w *AuditWorker) tally(p core.Period) *Tally {
	t, ok := w.months[p]
	if !ok {
		t = &Tally{}
		w.months[p] = t
	}
	return t
}

// Tally returns the counters for p; the zero Tally when nothing was seen.
func (w *AuditWorker) Tally(p core.Period) Tally {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.months[p]; ok {
		return *t
	}
	return Tally{}
}

// Deleted returns how many records of kind were deleted.
func (w *AuditWorker) Deleted(kind amqp.RecordKind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deleted[kind]
}

// Handled counts distinct events processed.
func (w *AuditWorker) Handled() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handled
}

// LogTotals writes one line per month, oldest first.
func (w *AuditWorker) LogTotals(ctx context.Context) {
	w.mu.Lock()
	periods := make([]core.Period, 0, len(w.months))
	for p := range w.months {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[j].After(periods[i]) })
	snapshot := make([]Tally, len(periods))
	for i, p := range periods {
		snapshot[i] = *w.months[p]
	}
	deletedExpenses, deletedIncome := w.deleted[amqp.KindExpense], w.deleted[amqp.KindIncome]
	handled := w.handled
	w.mu.Unlock()

	for i, p := range periods {
		t := snapshot[i]
		w.logger.InfoContext(ctx, "Audit totals",
			log.FieldYear, p.Year,
			log.FieldMonth, p.Month,
			"expenses", t.Expenses,
			"expenses_total", t.ExpensesTotal.StringFixed(2),
			"income", t.Income,
			"income_total", t.IncomeTotal.StringFixed(2))
	}
	w.logger.InfoContext(ctx, "Audit summary",
		"events", handled,
		"expenses_deleted", deletedExpenses,
		"income_deleted", deletedIncome)
}
