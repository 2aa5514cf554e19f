package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "ledger.db")
	repo, err := NewSQLiteRepository(dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func expense(amount, category, desc string, y, m, d int) core.NewExpense {
	return core.NewExpense{Amount: core.MustAmount(amount), Category: category, Description: desc, Date: core.NewDate(y, m, d)}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NoError(t, RunMigrations(dbPath))
	repo, err = NewSQLiteRepository(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}

func TestListExpensesFiltersByMonthNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, e := range []core.NewExpense{
		expense("10", "Food", "early", 2024, 3, 1),
		expense("20.5", "Transport", "", 2024, 3, 31),
		expense("5", "Food", "late", 2024, 3, 15),
		expense("99", "Food", "february", 2024, 2, 29),
		expense("99", "Food", "april", 2024, 4, 1),
	} {
		_, err := repo.CreateExpense(ctx, e)
		require.NoError(t, err)
	}

	got, err := repo.ListExpenses(ctx, core.Period{Year: 2024, Month: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-31", got[0].Date.String())
	assert.Equal(t, "2024-03-15", got[1].Date.String())
	assert.Equal(t, "2024-03-01", got[2].Date.String())
	assert.Equal(t, int64(2050), got[0].Amount.Cents())
	assert.Equal(t, "", got[0].Description)

	all, err := repo.ListAllExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "2024-04-01", all[0].Date.String())
}

func TestListEmptyIsNotNil(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.ListIncome(context.Background(), core.Period{Year: 2024, Month: 1})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, e := range []core.NewExpense{
		expense("10.10", "Transport", "", 2024, 3, 2),
		expense("4.90", "Food", "", 2024, 3, 3),
		expense("5", "Food", "", 2024, 3, 4),
		expense("1000", "Housing", "", 2024, 4, 1),
	} {
		_, err := repo.CreateExpense(ctx, e)
		require.NoError(t, err)
	}
	_, err := repo.CreateIncome(ctx, core.NewIncome{Amount: core.MustAmount("15"), Source: "Gift", Date: core.NewDate(2024, 3, 9)})
	require.NoError(t, err)

	s, err := repo.Summary(ctx, core.Period{Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), s.TotalIncome.Cents())
	assert.Equal(t, int64(2000), s.TotalExpenses.Cents())
	assert.Equal(t, int64(-500), s.Balance.Cents())
	require.Len(t, s.CategorySummary, 2)
	assert.Equal(t, "Food", s.CategorySummary[0].Category)
	assert.Equal(t, int64(990), s.CategorySummary[0].Total.Cents())
	assert.Equal(t, "Transport", s.CategorySummary[1].Category)

	empty, err := repo.Summary(ctx, core.Period{Year: 2023, Month: 1})
	require.NoError(t, err)
	assert.True(t, empty.Balance.IsZero())
	assert.NotNil(t, empty.CategorySummary)
	assert.Empty(t, empty.CategorySummary)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.CreateIncome(ctx, core.NewIncome{Amount: core.MustAmount("100"), Source: "Salary", Date: core.NewDate(2024, 3, 1)})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteIncome(ctx, id))
	err = repo.DeleteIncome(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = repo.DeleteExpense(ctx, 12345)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
