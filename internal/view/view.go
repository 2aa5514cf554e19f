// Package view projects ledger state into display-ready values. Every
// function here is pure: same input, same output, no I/O.
package view

import (
	"strconv"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

const (
	CurrencySymbol = "€"

	// Column counts of the rendered tables, used for placeholder rows.
	RecordColumns   = 5
	CategoryColumns = 2

	NoExpenses = "No expenses found"
	NoIncome   = "No income found"
	NoData     = "No data available"

	BalancePositive = "balance-positive"
	BalanceNegative = "balance-negative"

	emptyDescription = "-"
)

// Row is one record row. DeletePath addresses the record's delete action.
type Row struct {
	ID          int64
	Date        string
	Label       string
	Description string
	Amount      string
	DeletePath  string
}

// Table is a rendered table. When Rows is empty, Placeholder holds the
// single row to render instead, spanning Colspan columns.
type Table struct {
	Rows        []Row
	Placeholder string
	Colspan     int
}

// Empty reports whether the placeholder row is shown.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// RowCount is the number of rendered rows, placeholder included.
func (t Table) RowCount() int {
	if t.Empty() {
		return 1
	}
	return len(t.Rows)
}

type CategoryRow struct {
	Category string
	Total    string
}

type CategoryTable struct {
	Rows        []CategoryRow
	Placeholder string
	Colspan     int
}

func (t CategoryTable) Empty() bool { return len(t.Rows) == 0 }

func (t CategoryTable) RowCount() int {
	if t.Empty() {
		return 1
	}
	return len(t.Rows)
}

type Summary struct {
	TotalIncome   string
	TotalExpenses string
	Balance       string
	BalanceClass  string
}

// Page is everything the ledger templates need.
type Page struct {
	MonthLabel string
	Year       int
	Month      int
	Ready      bool
	Expenses   Table
	Income     Table
	Categories CategoryTable
	Summary    Summary
}

// FormatCurrency renders an amount with the currency symbol and exactly two
// decimals, e.g. "€12.50".
func FormatCurrency(a core.Amount) string {
	return CurrencySymbol + a.StringFixed(2)
}

// BalanceClass tags a balance by sign; zero counts as positive.
func BalanceClass(balance core.Amount) string {
	if balance.IsNegative() {
		return BalanceNegative
	}
	return BalancePositive
}

func description(s string) string {
	if s == "" {
		return emptyDescription
	}
	return s
}

func ExpenseTable(records []core.Expense) Table {
	t := Table{Placeholder: NoExpenses, Colspan: RecordColumns}
	for _, e := range records {
		t.Rows = append(t.Rows, Row{
			ID:          e.ID,
			Date:        e.Date.String(),
			Label:       e.Category,
			Description: description(e.Description),
			Amount:      FormatCurrency(e.Amount),
			DeletePath:  "/expenses/" + strconv.FormatInt(e.ID, 10),
		})
	}
	return t
}

func IncomeTable(records []core.Income) Table {
	t := Table{Placeholder: NoIncome, Colspan: RecordColumns}
	for _, i := range records {
		t.Rows = append(t.Rows, Row{
			ID:          i.ID,
			Date:        i.Date.String(),
			Label:       i.Source,
			Description: description(i.Description),
			Amount:      FormatCurrency(i.Amount),
			DeletePath:  "/income/" + strconv.FormatInt(i.ID, 10),
		})
	}
	return t
}

// Categories keeps the order the backend returned.
func Categories(totals []core.CategoryTotal) CategoryTable {
	t := CategoryTable{Placeholder: NoData, Colspan: CategoryColumns}
	for _, c := range totals {
		t.Rows = append(t.Rows, CategoryRow{Category: c.Category, Total: FormatCurrency(c.Total)})
	}
	return t
}

func SummaryOf(s core.MonthSummary) Summary {
	return Summary{
		TotalIncome:   FormatCurrency(s.TotalIncome),
		TotalExpenses: FormatCurrency(s.TotalExpenses),
		Balance:       FormatCurrency(s.Balance),
		BalanceClass:  BalanceClass(s.Balance),
	}
}

// Build projects the controller state into a Page. The month label follows
// the viewed month even when the data still belongs to an earlier one.
func Build(s ledger.State) Page {
	return Page{
		MonthLabel: s.Viewed.Label(),
		Year:       s.Viewed.Year,
		Month:      s.Viewed.Month,
		Ready:      s.Ready,
		Expenses:   ExpenseTable(s.Expenses),
		Income:     IncomeTable(s.Income),
		Categories: Categories(s.Summary.CategorySummary),
		Summary:    SummaryOf(s.Summary),
	}
}
