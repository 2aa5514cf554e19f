package ledger

import (
	"slices"

	"ledger/internal/core"
)

// State is the last successfully fetched month data. It is replaced as a
// unit by Refresh and never partially updated.
type State struct {
	// Viewed is the month currently selected for display.
	Viewed core.Period
	// Loaded is the month the data below belongs to; zero until the first
	// successful refresh.
	Loaded   core.Period
	Ready    bool
	Expenses []core.Expense
	Income   []core.Income
	Summary  core.MonthSummary
}

func (s State) clone() State {
	s.Expenses = slices.Clone(s.Expenses)
	s.Income = slices.Clone(s.Income)
	s.Summary.CategorySummary = slices.Clone(s.Summary.CategorySummary)
	return s
}
