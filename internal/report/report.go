// Package report derives totals, breakdowns and alerts from a snapshot of
// the stores. Every function is pure; nothing is cached between calls.
package report

import (
	"math"
	"slices"
	"sort"

	"presupuesto/internal/core"
)

// Savings-rate thresholds in percent.
const (
	LowSavingsThreshold  = 10.0
	HighSavingsThreshold = 20.0
)

type Status string

const (
	StatusExceeded Status = "exceeded"
	StatusWithin   Status = "within"
	StatusNone     Status = "none"
)

// Label is the Spanish caption shown next to a category row. StatusNone
// means nothing was spent, whatever the budget.
func (s Status) Label() string {
	switch s {
	case StatusExceeded:
		return "Excedido"
	case StatusWithin:
		return "Dentro del presupuesto"
	default:
		return "Sin gastos"
	}
}

type Totals struct {
	Income  core.Money `json:"income_total"`
	Expense core.Money `json:"expense_total"`
	Balance core.Money `json:"balance"`
}

// SavingsRate returns (income-expense)/income*100. ok is false when there is
// no income.
func (t Totals) SavingsRate() (rate float64, ok bool) {
	if t.Income.Cents <= 0 {
		return 0, false
	}
	return float64(t.Balance.Cents) / float64(t.Income.Cents) * 100, true
}

type CategoryRow struct {
	Category    string     `json:"category"`
	Budgeted    core.Money `json:"budgeted"`
	Spent       core.Money `json:"spent"`
	Variance    core.Money `json:"variance"`
	PercentUsed float64    `json:"percent_used"`
	Status      Status     `json:"status"`
}

type SubcategoryRow struct {
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Spent       core.Money `json:"spent"`
	Budgeted    core.Money `json:"budgeted"`
	Exceeded    bool       `json:"exceeded"`
}

type PaymentRow struct {
	Method  string     `json:"method"`
	Total   core.Money `json:"total"`
	Percent float64    `json:"percent"`
}

// ShareRow is one slice of a spending distribution. Category is set only for
// subcategory shares.
type ShareRow struct {
	Name     string     `json:"name"`
	Category string     `json:"category,omitempty"`
	Total    core.Money `json:"total"`
	Percent  float64    `json:"percent"`
}

// MonthsPresent returns every YYYY-MM seen in either collection, sorted.
func MonthsPresent(incomes []core.Income, expenses []core.Expense) []core.MonthKey {
	seen := map[core.MonthKey]struct{}{}
	for _, in := range incomes {
		seen[in.Date.MonthKey()] = struct{}{}
	}
	for _, e := range expenses {
		seen[e.Date.MonthKey()] = struct{}{}
	}
	out := make([]core.MonthKey, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

func FilterIncomes(incomes []core.Income, f core.MonthFilter) []core.Income {
	out := make([]core.Income, 0, len(incomes))
	for _, in := range incomes {
		if f.Matches(in.Date) {
			out = append(out, in)
		}
	}
	return out
}

func FilterExpenses(expenses []core.Expense, f core.MonthFilter) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Matches(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// ComputeTotals sums the records selected by f.
func ComputeTotals(incomes []core.Income, expenses []core.Expense, f core.MonthFilter) Totals {
	var t Totals
	for _, in := range incomes {
		if f.Matches(in.Date) {
			t.Income = t.Income.Add(in.Amount)
		}
	}
	for _, e := range expenses {
		if f.Matches(e.Date) {
			t.Expense = t.Expense.Add(e.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryBreakdown returns one row per taxonomy category, in taxonomy order,
// whether or not it has expenses. expenses must already be filtered.
func CategoryBreakdown(t core.Taxonomy, expenses []core.Expense, budget map[string]core.Money) []CategoryRow {
	spent := map[string]core.Money{}
	for _, e := range expenses {
		spent[e.Category] = spent[e.Category].Add(e.Amount)
	}

	rows := make([]CategoryRow, 0, len(t.Categories))
	for _, c := range t.Categories {
		row := CategoryRow{
			Category: c.Name,
			Budgeted: budget[c.Name],
			Spent:    spent[c.Name],
		}
		row.Variance = row.Budgeted.Sub(row.Spent)
		if row.Budgeted.Cents > 0 {
			row.PercentUsed = round2(float64(row.Spent.Cents) / float64(row.Budgeted.Cents) * 100)
		}
		switch {
		case row.Spent.Cents > row.Budgeted.Cents:
			row.Status = StatusExceeded
		case row.Spent.Cents > 0:
			row.Status = StatusWithin
		default:
			row.Status = StatusNone
		}
		rows = append(rows, row)
	}
	return rows
}

// SubcategoryBreakdown returns one row per taxonomy (category, subcategory)
// pair. Subcategories have no budget of their own: each row compares its
// spend with the whole category budget.
func SubcategoryBreakdown(t core.Taxonomy, expenses []core.Expense, budget map[string]core.Money) []SubcategoryRow {
	type key struct{ cat, sub string }
	spent := map[key]core.Money{}
	for _, e := range expenses {
		k := key{e.Category, e.Subcategory}
		spent[k] = spent[k].Add(e.Amount)
	}

	var rows []SubcategoryRow
	for _, c := range t.Categories {
		for _, sub := range c.Subcategories {
			row := SubcategoryRow{
				Category:    c.Name,
				Subcategory: sub,
				Spent:       spent[key{c.Name, sub}],
				Budgeted:    budget[c.Name],
			}
			row.Exceeded = row.Spent.Cents > row.Budgeted.Cents
			rows = append(rows, row)
		}
	}
	return rows
}

// PaymentMethodBreakdown groups expenses by the payment methods actually used,
// largest total first.
func PaymentMethodBreakdown(expenses []core.Expense) []PaymentRow {
	totals := map[string]core.Money{}
	var sum core.Money
	for _, e := range expenses {
		totals[e.PaymentMethod] = totals[e.PaymentMethod].Add(e.Amount)
		sum = sum.Add(e.Amount)
	}

	rows := make([]PaymentRow, 0, len(totals))
	for method, total := range totals {
		rows = append(rows, PaymentRow{Method: method, Total: total, Percent: percentOf(total, sum)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].Method < rows[j].Method
	})
	return rows
}

// CategoryShare is the spending distribution across categories with spend.
func CategoryShare(expenses []core.Expense) []ShareRow {
	totals := map[string]core.Money{}
	var sum core.Money
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
		sum = sum.Add(e.Amount)
	}
	rows := make([]ShareRow, 0, len(totals))
	for cat, total := range totals {
		rows = append(rows, ShareRow{Name: cat, Total: total, Percent: percentOf(total, sum)})
	}
	sortShares(rows)
	return rows
}

// SubcategoryShare is the spending distribution across the subcategories with
// spend.
func SubcategoryShare(expenses []core.Expense) []ShareRow {
	type key struct{ cat, sub string }
	totals := map[key]core.Money{}
	var sum core.Money
	for _, e := range expenses {
		k := key{e.Category, e.Subcategory}
		totals[k] = totals[k].Add(e.Amount)
		sum = sum.Add(e.Amount)
	}
	rows := make([]ShareRow, 0, len(totals))
	for k, total := range totals {
		rows = append(rows, ShareRow{Name: k.sub, Category: k.cat, Total: total, Percent: percentOf(total, sum)})
	}
	sortShares(rows)
	return rows
}

// BudgetTotal sums the budget of the taxonomy categories. Amounts kept for
// categories no longer in the taxonomy are ignored.
func BudgetTotal(t core.Taxonomy, budget map[string]core.Money) core.Money {
	var sum core.Money
	for _, c := range t.Categories {
		sum = sum.Add(budget[c.Name])
	}
	return sum
}

func sortShares(rows []ShareRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Name < rows[j].Name
	})
}

func percentOf(part, whole core.Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	return round2(float64(part.Cents) / float64(whole.Cents) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
