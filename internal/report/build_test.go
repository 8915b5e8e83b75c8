package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presupuesto/internal/core"
)

func TestBuildMonth(t *testing.T) {
	tax := core.DefaultTaxonomy()
	recs := scenario()
	recs.Incomes = append(recs.Incomes, salary(400, core.NewDate(2025, 4, 2)))
	recs.Expenses = append(recs.Expenses, expense(20, "Salud", "Medicinas", "Efectivo", core.NewDate(2025, 3, 1)))
	budgets := core.Budgets{"2025-03": {"Vivienda": money(1000)}, "2025-04": {"Vivienda": money(5)}}

	r := Build(tax, recs, budgets, march)

	assert.Equal(t, []core.MonthKey{"2025-03", "2025-04"}, r.Months)
	assert.Equal(t, Totals{Income: money(1000), Expense: money(1220), Balance: money(-220)}, r.Totals)
	assert.Equal(t, money(1000), r.BudgetTotal)
	assert.Len(t, r.Budget, len(tax.Categories))
	assert.Len(t, r.Categories, len(tax.Categories))
	require.Len(t, r.Incomes, 1)
	require.Len(t, r.Expenses, 2)
	assert.Equal(t, "Salud", r.Expenses[0].Category, "detail is ordered by date")
	require.NotNil(t, r.SavingsRate)
	assert.Equal(t, -22.0, *r.SavingsRate)
	assert.Contains(t, alertKinds(r.Alerts), AlertCategoryExceeded)
}

func TestBuildAllHasNoBudget(t *testing.T) {
	tax := core.DefaultTaxonomy()
	budgets := core.Budgets{"2025-03": {"Vivienda": money(1000)}}

	r := Build(tax, scenario(), budgets, core.MonthFilter(core.AllMonths))

	assert.Empty(t, r.Budget)
	assert.Zero(t, r.BudgetTotal.Cents)
	assert.Equal(t, StatusExceeded, findCategory(t, r.Categories, "Vivienda").Status)
	assert.NotContains(t, alertKinds(r.Alerts), AlertCategoryExceeded)
}

func TestBuildEmpty(t *testing.T) {
	r := Build(core.DefaultTaxonomy(), core.EmptyRecords(), core.Budgets{}, march)
	assert.Empty(t, r.Months)
	assert.Nil(t, r.SavingsRate)
	assert.Empty(t, r.Alerts)
	assert.Empty(t, r.PaymentMethods)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	recs := scenario()
	recs.Expenses = append(recs.Expenses, expense(1, "Otros", "Varios", "Efectivo", core.NewDate(2025, 3, 1)))
	before := recs.Clone()
	budgets := core.Budgets{}

	Build(core.DefaultTaxonomy(), recs, budgets, march)
	assert.Equal(t, before, recs)
	assert.Empty(t, budgets)
}
