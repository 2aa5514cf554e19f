package ports

import (
	"context"

	"ledger/internal/core"
)

// Ports for the ledger data source.
type (
	// LedgerReader reads month-scoped records and aggregates.
	LedgerReader interface {
		ListExpenses(ctx context.Context, p core.Period) ([]core.Expense, error)
		ListIncome(ctx context.Context, p core.Period) ([]core.Income, error)
		// Summary returns the server-computed totals for the month.
		Summary(ctx context.Context, p core.Period) (core.MonthSummary, error)
	}

	// LedgerWriter creates and deletes records.
	LedgerWriter interface {
		CreateExpense(ctx context.Context, e core.NewExpense) (id int64, err error)
		CreateIncome(ctx context.Context, i core.NewIncome) (id int64, err error)
		DeleteExpense(ctx context.Context, id int64) error
		DeleteIncome(ctx context.Context, id int64) error
	}

	Ledger interface {
		LedgerReader
		LedgerWriter
	}

	// TaxonomyReader lists the fixed selector values offered by the forms.
	TaxonomyReader interface {
		Categories() []string
		Sources() []string
		HasCategory(c string) bool
		HasSource(src string) bool
	}
)
