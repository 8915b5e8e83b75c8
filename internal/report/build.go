package report

import (
	"slices"

	"presupuesto/internal/core"
)

// Report is everything the dashboard shows for one month filter.
type Report struct {
	Filter           core.MonthFilter      `json:"filter"`
	Months           []core.MonthKey       `json:"months"`
	Totals           Totals                `json:"totals"`
	SavingsRate      *float64              `json:"savings_rate"`
	Budget           map[string]core.Money `json:"budget"`
	BudgetTotal      core.Money            `json:"budget_total"`
	Categories       []CategoryRow         `json:"categories"`
	Subcategories    []SubcategoryRow      `json:"subcategories"`
	CategoryShare    []ShareRow            `json:"category_share"`
	SubcategoryShare []ShareRow            `json:"subcategory_share"`
	PaymentMethods   []PaymentRow          `json:"payment_methods"`
	Alerts           []Alert               `json:"alerts"`
	Incomes          []core.Income         `json:"incomes"`
	Expenses         []core.Expense        `json:"expenses"`
}

// Build computes the full report for filter from the given snapshot. With the
// "all" filter no month budget applies and budget-based figures are zero.
func Build(t core.Taxonomy, recs core.Records, budgets core.Budgets, filter core.MonthFilter) Report {
	incomes := FilterIncomes(recs.Incomes, filter)
	expenses := FilterExpenses(recs.Expenses, filter)

	budget := map[string]core.Money{}
	if month, ok := filter.Month(); ok {
		budget = budgets.Month(month, t)
	}

	totals := ComputeTotals(incomes, expenses, core.MonthFilter(core.AllMonths))
	categories := CategoryBreakdown(t, expenses, budget)

	r := Report{
		Filter:           filter,
		Months:           MonthsPresent(recs.Incomes, recs.Expenses),
		Totals:           totals,
		Budget:           budget,
		BudgetTotal:      BudgetTotal(t, budget),
		Categories:       categories,
		Subcategories:    SubcategoryBreakdown(t, expenses, budget),
		CategoryShare:    CategoryShare(expenses),
		SubcategoryShare: SubcategoryShare(expenses),
		PaymentMethods:   PaymentMethodBreakdown(expenses),
		Alerts:           Alerts(totals, categories),
		Incomes:          sortedIncomes(incomes),
		Expenses:         sortedExpenses(expenses),
	}
	if rate, ok := totals.SavingsRate(); ok {
		rate = round2(rate)
		r.SavingsRate = &rate
	}
	return r
}

func sortedIncomes(in []core.Income) []core.Income {
	slices.SortStableFunc(in, func(a, b core.Income) int { return a.Date.Compare(b.Date.Time) })
	return in
}

func sortedExpenses(in []core.Expense) []core.Expense {
	slices.SortStableFunc(in, func(a, b core.Expense) int { return a.Date.Compare(b.Date.Time) })
	return in
}
