package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presupuesto/internal/core"
)

func newBudgetStore(t *testing.T) (*BudgetStore, *memPersister) {
	t.Helper()
	p := &memPersister{}
	s := NewBudgetStore(p, core.DefaultTaxonomy(), nil)
	require.NoError(t, s.Load(context.Background()))
	return s, p
}

func TestBudgetStoreEnsureMonthIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, p := newBudgetStore(t)

	first, err := s.EnsureMonth(ctx, "2025-03")
	require.NoError(t, err)
	assert.Len(t, first, len(core.DefaultTaxonomy().Categories))
	for cat, amount := range first {
		assert.Zero(t, amount.Cents, cat)
	}
	afterFirst := s.Snapshot()

	second, err := s.EnsureMonth(ctx, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, afterFirst, s.Snapshot())
	assert.Equal(t, 1, p.saves)
}

func TestBudgetStoreEnsureMonthFillsMissingCategories(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{budgets: core.Budgets{"2025-03": {"Vivienda": core.Money{Cents: 100000}}}}
	s := NewBudgetStore(p, core.DefaultTaxonomy(), nil)
	require.NoError(t, s.Load(ctx))

	view, err := s.EnsureMonth(ctx, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), view["Vivienda"].Cents)
	assert.Len(t, p.budgets["2025-03"], len(core.DefaultTaxonomy().Categories))
}

func TestBudgetStoreSetCategoryBudget(t *testing.T) {
	ctx := context.Background()
	s, p := newBudgetStore(t)

	require.NoError(t, s.SetCategoryBudget(ctx, "2025-03", "Vivienda", core.Money{Cents: 100000}))
	require.NoError(t, s.SetCategoryBudget(ctx, "2025-03", "Salud", core.Money{}))

	month := p.budgets["2025-03"]
	assert.Len(t, month, len(core.DefaultTaxonomy().Categories), "setting one category creates the month")
	assert.Equal(t, int64(100000), month["Vivienda"].Cents)

	assert.ErrorIs(t, s.SetCategoryBudget(ctx, "2025-03", "Vivienda", core.Money{Cents: -1}), core.ErrInvalidAmount)
	assert.ErrorIs(t, s.SetCategoryBudget(ctx, "2025-03", "Viajes", core.Money{Cents: 1}), core.ErrUnknownCategory)
	assert.ErrorIs(t, s.SetCategoryBudget(ctx, "March", "Vivienda", core.Money{Cents: 1}), core.ErrInvalidMonth)
	assert.Equal(t, int64(100000), s.Month("2025-03")["Vivienda"].Cents)
}

func TestBudgetStoreMonthDoesNotPersist(t *testing.T) {
	s, p := newBudgetStore(t)

	view := s.Month("2025-05")
	assert.Len(t, view, len(core.DefaultTaxonomy().Categories))
	assert.Empty(t, s.Snapshot())
	assert.Zero(t, p.saves)
}

func TestBudgetStoreReset(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "presupuesto_mensual.json")
	s := NewBudgetStore(NewJSONBudgetFile(path), core.DefaultTaxonomy(), nil)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.SetCategoryBudget(ctx, "2025-03", "Vivienda", core.Money{Cents: 100000}))

	require.NoError(t, s.Reset(ctx))
	assert.Empty(t, s.Snapshot())

	reloaded := NewBudgetStore(NewJSONBudgetFile(path), core.DefaultTaxonomy(), nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Empty(t, reloaded.Snapshot())
}

func TestBudgetStoreReloadKeepsStateOnReadFailure(t *testing.T) {
	ctx := context.Background()
	s, p := newBudgetStore(t)
	require.NoError(t, s.SetCategoryBudget(ctx, "2025-03", "Vivienda", core.Money{Cents: 50000}))

	p.failLoad = true
	err := s.Reload(ctx)
	assert.True(t, core.IsStorageUnavailable(err))
	assert.Equal(t, int64(50000), s.Month("2025-03")["Vivienda"].Cents)

	p.failLoad = false
	require.NoError(t, s.SetCategoryBudget(ctx, "2025-04", "Vivienda", core.Money{Cents: 100}))
	assert.Len(t, p.budgets, 2)
}

func TestBudgetStoreWriteFailure(t *testing.T) {
	ctx := context.Background()
	s, p := newBudgetStore(t)
	p.failSave = true

	err := s.SetCategoryBudget(ctx, "2025-03", "Vivienda", core.Money{Cents: 100})
	assert.True(t, core.IsStorageUnavailable(err))
	assert.Empty(t, s.Snapshot())
}
