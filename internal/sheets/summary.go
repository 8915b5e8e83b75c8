package sheets

import (
	"fmt"
	"strings"

	"presupuesto/internal/core"
	"presupuesto/internal/report"
)

// Summary is the content of one sheet: a title and the rows to write from
// the top-left cell.
type Summary struct {
	Sheet string
	Rows  [][]any
}

// SheetName returns the title of the sheet holding filter's summary, e.g.
// "Resumen 2025-03" or "Resumen Total".
func SheetName(base string, filter core.MonthFilter) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "Resumen"
	}
	if month, ok := filter.Month(); ok {
		return fmt.Sprintf("%s %s", base, month)
	}
	return base + " Total"
}

// NewSummary lays out r as sheet rows. Amounts are written as plain decimal
// strings so the spreadsheet parses them as numbers.
func NewSummary(base string, r report.Report) Summary {
	period := "Todos los meses"
	if month, ok := r.Filter.Month(); ok {
		period = string(month)
	}

	rows := [][]any{
		{"Resumen", period},
		{},
		{"Ingresos", r.Totals.Income.String()},
		{"Gastos", r.Totals.Expense.String()},
		{"Balance", r.Totals.Balance.String()},
		{"Tasa de ahorro", savingsCell(r.SavingsRate)},
		{"Presupuesto total", r.BudgetTotal.String()},
		{},
		{"Categoría", "Presupuestado", "Gastado", "Diferencia", "% usado", "Estado"},
	}
	for _, c := range r.Categories {
		rows = append(rows, []any{
			c.Category, c.Budgeted.String(), c.Spent.String(), c.Variance.String(),
			fmt.Sprintf("%.2f", c.PercentUsed), c.Status.Label(),
		})
	}

	rows = append(rows, []any{}, []any{"Medio de pago", "Total", "%"})
	for _, p := range r.PaymentMethods {
		rows = append(rows, []any{p.Method, p.Total.String(), fmt.Sprintf("%.2f", p.Percent)})
	}

	if len(r.Alerts) > 0 {
		rows = append(rows, []any{}, []any{"Alertas"})
		for _, a := range r.Alerts {
			rows = append(rows, []any{a.Message})
		}
	}

	return Summary{Sheet: SheetName(base, r.Filter), Rows: rows}
}

func savingsCell(rate *float64) string {
	if rate == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *rate)
}

