// Package storage persists ledger records in SQLite. Amounts are stored as
// integer cents and dates as YYYY-MM-DD text, so lexical order is date order.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ledger/internal/core"
)

type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it to the latest schema.
func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.NewExpense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount_cents, category, description, date) VALUES (?, ?, ?, ?)`,
		e.Amount.Cents(), e.Category, e.Description, e.Date.String())
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create expense: last insert id: %w", err)
	}

	r.logger.InfoContext(ctx, "Expense saved",
		"id", id,
		"category", e.Category,
		"amount_cents", e.Amount.Cents(),
		"date", e.Date.String())
	return id, nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, i core.NewIncome) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO income (amount_cents, source, description, date) VALUES (?, ?, ?, ?)`,
		i.Amount.Cents(), i.Source, i.Description, i.Date.String())
	if err != nil {
		return 0, fmt.Errorf("create income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create income: last insert id: %w", err)
	}

	r.logger.InfoContext(ctx, "Income saved",
		"id", id,
		"source", i.Source,
		"amount_cents", i.Amount.Cents(),
		"date", i.Date.String())
	return id, nil
}

const (
	expenseColumns = `id, amount_cents, category, description, date`
	incomeColumns  = `id, amount_cents, source, description, date`
)

// ListExpenses returns the period's expenses, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, p core.Period) ([]core.Expense, error) {
	from, to := p.Range()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE date >= ? AND date < ? ORDER BY date DESC, id DESC`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses (%s): %w", p, err)
	}
	return scanExpenses(rows)
}

// ListAllExpenses returns every expense, newest first.
func (r *SQLiteRepository) ListAllExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all expenses: %w", err)
	}
	return scanExpenses(rows)
}

func (r *SQLiteRepository) ListIncome(ctx context.Context, p core.Period) ([]core.Income, error) {
	from, to := p.Range()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+incomeColumns+` FROM income WHERE date >= ? AND date < ? ORDER BY date DESC, id DESC`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list income (%s): %w", p, err)
	}
	return scanIncome(rows)
}

func (r *SQLiteRepository) ListAllIncome(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+incomeColumns+` FROM income ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all income: %w", err)
	}
	return scanIncome(rows)
}

// Summary computes the period totals and the per-category expense breakdown,
// ordered by category name.
func (r *SQLiteRepository) Summary(ctx context.Context, p core.Period) (core.MonthSummary, error) {
	from, to := p.Range()

	var incomeCents, expenseCents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM income WHERE date >= ?1 AND date < ?2),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE date >= ?1 AND date < ?2)`,
		from.String(), to.String()).Scan(&incomeCents, &expenseCents)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("summary totals (%s): %w", p, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) FROM expenses
		WHERE date >= ? AND date < ?
		GROUP BY category ORDER BY category`,
		from.String(), to.String())
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("category summary (%s): %w", p, err)
	}
	defer rows.Close()

	var byCategory []core.CategoryTotal
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return core.MonthSummary{}, fmt.Errorf("scan category summary: %w", err)
		}
		byCategory = append(byCategory, core.CategoryTotal{Category: category, Total: core.NewAmountFromCents(cents)})
	}
	if err := rows.Err(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("iterate category summary: %w", err)
	}

	return core.NewMonthSummary(core.NewAmountFromCents(incomeCents), core.NewAmountFromCents(expenseCents), byCategory), nil
}

// DeleteExpense returns core.ErrNotFound when no expense has the id.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	return r.delete(ctx, "expenses", id)
}

// DeleteIncome returns core.ErrNotFound when no income record has the id.
func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	return r.delete(ctx, "income", id)
}

func (r *SQLiteRepository) delete(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s (id=%d): %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s (id=%d): rows affected: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete from %s (id=%d): %w", table, id, core.ErrNotFound)
	}
	r.logger.InfoContext(ctx, "Record deleted", "table", table, "id", id)
	return nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()
	out := []core.Expense{}
	for rows.Next() {
		var (
			e     core.Expense
			cents int64
			date  string
		)
		if err := rows.Scan(&e.ID, &cents, &e.Category, &e.Description, &date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("scan expense %d: %w", e.ID, err)
		}
		e.Amount = core.NewAmountFromCents(cents)
		e.Date = d
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func scanIncome(rows *sql.Rows) ([]core.Income, error) {
	defer rows.Close()
	out := []core.Income{}
	for rows.Next() {
		var (
			i     core.Income
			cents int64
			date  string
		)
		if err := rows.Scan(&i.ID, &cents, &i.Source, &i.Description, &date); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("scan income %d: %w", i.ID, err)
		}
		i.Amount = core.NewAmountFromCents(cents)
		i.Date = d
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income: %w", err)
	}
	return out, nil
}
