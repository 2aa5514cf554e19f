// Package ledger implements the month-scoped ledger controller: it owns the
// viewed month, fetches the month's records and summary, and submits create
// and delete operations, reporting every outcome as a notification.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/backend"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/ports"
)

const (
	msgLoadFailed    = "Error loading data. Please try again."
	msgFutureMonth   = "Cannot navigate to future months"
	msgSelectCat     = "Please select a category"
	msgSelectSource  = "Please select a source"
	msgUnknownCat    = "Please select a valid category"
	msgUnknownSource = "Please select a valid source"
	msgInvalidAmount = "Please enter a valid amount"
)

// ValidationError is a locally detected input problem. No request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ExpenseForm is the raw expense form input.
type ExpenseForm struct {
	Amount      string
	Category    string
	Description string
}

// IncomeForm is the raw income form input.
type IncomeForm struct {
	Amount      string
	Source      string
	Description string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now, which decides the starting month, the
// future-navigation bound and the date stamped on new records.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithTaxonomy restricts categories and sources to the given sets. Without
// it any non-empty value is accepted.
func WithTaxonomy(t ports.TaxonomyReader) Option {
	return func(c *Controller) {
		c.taxonomy = t
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller is the monthly ledger controller. It is safe for concurrent use;
// overlapping refreshes are not cancelled and the last one to finish wins.
type Controller struct {
	ledger   ports.Ledger
	notifier Notifier
	taxonomy ports.TaxonomyReader
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

func NewController(l ports.Ledger, n Notifier, opts ...Option) *Controller {
	c := &Controller{
		ledger:   l,
		notifier: n,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Viewed = core.PeriodOf(c.now())
	return c
}

// Viewed returns the month currently selected for display.
func (c *Controller) Viewed() core.Period {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Viewed
}

// State returns a copy of the current application state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Refresh fetches expenses, income and summary for the viewed month
// concurrently. If any fetch fails the state is left untouched and a single
// error notification is emitted.
func (c *Controller) Refresh(ctx context.Context) error {
	p := c.Viewed()

	var (
		expenses []core.Expense
		income   []core.Income
		summary  core.MonthSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, err = c.ledger.ListExpenses(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		income, err = c.ledger.ListIncome(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		summary, err = c.ledger.Summary(gctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.ErrorContext(ctx, "Error loading data", log.NewFields().
			WithOperation(log.OpRefresh).
			WithPeriod(p.Year, p.Month).
			WithError(err).
			ToSlice()...)
		c.notifyError(msgLoadFailed)
		return fmt.Errorf("refresh %s: %w", p, err)
	}

	c.mu.Lock()
	c.state.Loaded = p
	c.state.Ready = true
	c.state.Expenses = expenses
	c.state.Income = income
	c.state.Summary = summary
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "Month data loaded", log.NewFields().
		WithOperation(log.OpRefresh).
		WithPeriod(p.Year, p.Month).
		WithMonthData(len(expenses), len(income), len(summary.CategorySummary)).
		ToSlice()...)
	return nil
}

// ChangeMonth moves the viewed month by delta. A result later than the real
// current month is rejected: the view resets to the current month and an
// error notification is emitted. The month data is refreshed either way.
func (c *Controller) ChangeMonth(ctx context.Context, delta int) error {
	current := core.PeriodOf(c.now())

	c.mu.Lock()
	target := c.state.Viewed.Shift(delta)
	future := target.After(current)
	if future {
		target = current
	}
	c.state.Viewed = target
	c.mu.Unlock()

	if future {
		c.logger.WarnContext(ctx, "Rejected navigation to a future month", log.NewFields().
			WithOperation(log.OpNavigate).
			WithDelta(delta).
			WithPeriod(current.Year, current.Month).
			ToSlice()...)
		c.notifyError(msgFutureMonth)
	}
	return c.Refresh(ctx)
}

// SubmitExpense validates the form, creates an expense dated today and
// refreshes on success.
func (c *Controller) SubmitExpense(ctx context.Context, f ExpenseForm) error {
	category := strings.TrimSpace(f.Category)
	if category == "" {
		return c.rejectInput("category", msgSelectCat)
	}
	if c.taxonomy != nil && !c.taxonomy.HasCategory(category) {
		return c.rejectInput("category", msgUnknownCat)
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return c.rejectInput("amount", msgInvalidAmount)
	}

	e := core.NewExpense{
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(f.Description),
		Date:        core.DateOf(c.now()),
	}
	id, err := c.ledger.CreateExpense(ctx, e)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error adding expense", log.NewFields().
			WithOperation(log.OpCreate).
			WithRecord("expense", 0).
			WithExpense(e.Category, e.Amount.String(), "").
			WithError(err).
			ToSlice()...)
		c.notifyError("Error adding expense: " + backend.DetailOr(err, "Failed to add expense"))
		return err
	}

	c.logger.InfoContext(ctx, "Expense added", log.NewFields().
		WithOperation(log.OpCreate).
		WithRecord("expense", id).
		WithExpense(e.Category, e.Amount.String(), e.Date.String()).
		ToSlice()...)
	c.notifySuccess("Expense added successfully!")
	_ = c.Refresh(ctx)
	return nil
}

// SubmitIncome mirrors SubmitExpense for income records.
func (c *Controller) SubmitIncome(ctx context.Context, f IncomeForm) error {
	source := strings.TrimSpace(f.Source)
	if source == "" {
		return c.rejectInput("source", msgSelectSource)
	}
	if c.taxonomy != nil && !c.taxonomy.HasSource(source) {
		return c.rejectInput("source", msgUnknownSource)
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return c.rejectInput("amount", msgInvalidAmount)
	}

	i := core.NewIncome{
		Amount:      amount,
		Source:      source,
		Description: strings.TrimSpace(f.Description),
		Date:        core.DateOf(c.now()),
	}
	id, err := c.ledger.CreateIncome(ctx, i)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error adding income", log.NewFields().
			WithOperation(log.OpCreate).
			WithRecord("income", 0).
			WithIncome(i.Source, i.Amount.String(), "").
			WithError(err).
			ToSlice()...)
		c.notifyError("Error adding income: " + backend.DetailOr(err, "Failed to add income"))
		return err
	}

	c.logger.InfoContext(ctx, "Income added", log.NewFields().
		WithOperation(log.OpCreate).
		WithRecord("income", id).
		WithIncome(i.Source, i.Amount.String(), i.Date.String()).
		ToSlice()...)
	c.notifySuccess("Income added successfully!")
	_ = c.Refresh(ctx)
	return nil
}

// ErrDeclined is returned when the user does not confirm a deletion.
var ErrDeclined = errors.New("deletion not confirmed")

// DeleteExpense removes an expense after confirmation.
func (c *Controller) DeleteExpense(ctx context.Context, id int64, confirm Confirmer) error {
	return c.deleteRecord(ctx, "expense", id, confirm, c.ledger.DeleteExpense)
}

// DeleteIncome removes an income record after confirmation.
func (c *Controller) DeleteIncome(ctx context.Context, id int64, confirm Confirmer) error {
	return c.deleteRecord(ctx, "income", id, confirm, c.ledger.DeleteIncome)
}

func (c *Controller) deleteRecord(ctx context.Context, kind string, id int64, confirm Confirmer, del func(context.Context, int64) error) error {
	if confirm == nil || !confirm.Confirm(ctx, "Are you sure you want to delete this "+kind+"?") {
		return ErrDeclined
	}

	if err := del(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "Error deleting "+kind, log.NewFields().
			WithOperation(log.OpDelete).
			WithRecord(kind, id).
			WithError(err).
			ToSlice()...)
		c.notifyError("Error deleting " + kind + ". Please try again.")
		return err
	}

	c.logger.InfoContext(ctx, "Deleted "+kind, log.NewFields().
		WithOperation(log.OpDelete).
		WithRecord(kind, id).
		ToSlice()...)
	c.notifySuccess(capitalize(kind) + " deleted successfully!")
	_ = c.Refresh(ctx)
	return nil
}

func (c *Controller) rejectInput(field, msg string) error {
	c.notifyError(msg)
	return &ValidationError{Field: field, Message: msg}
}

func (c *Controller) notifyError(msg string) {
	c.notify(NotificationError, msg)
}

func (c *Controller) notifySuccess(msg string) {
	c.notify(NotificationSuccess, msg)
}

func (c *Controller) notify(kind NotificationKind, msg string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(Notification{Kind: kind, Message: msg, At: c.now()})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
