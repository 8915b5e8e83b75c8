package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"presupuesto/internal/core"
	"presupuesto/internal/report"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func periodLabel(f core.MonthFilter) string {
	if f.IsAll() {
		return "Todos los meses"
	}
	return string(f)
}

func savingsLabel(rate *float64) string {
	if rate == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *rate)
}

// RenderReport writes the summary, category table, payment methods and
// alerts of r.
func RenderReport(w io.Writer, r report.Report) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Resumen " + periodLabel(r.Filter)))
	b.WriteString("\n")

	summary := newTable("Concepto", "Monto").Rows(
		[]string{"Ingresos", r.Totals.Income.Display()},
		[]string{"Gastos", r.Totals.Expense.Display()},
		[]string{"Balance", r.Totals.Balance.Display()},
		[]string{"Tasa de ahorro", savingsLabel(r.SavingsRate)},
	)
	if !r.Filter.IsAll() {
		summary.Row("Presupuesto total", r.BudgetTotal.Display())
	}
	b.WriteString(summary.String())
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Categorías"))
	b.WriteString("\n")
	cats := newTable("Categoría", "Presupuesto", "Gastado", "Diferencia", "% usado", "Estado")
	for _, row := range r.Categories {
		cats.Row(row.Category, row.Budgeted.Display(), row.Spent.Display(), row.Variance.Display(),
			fmt.Sprintf("%.1f%%", row.PercentUsed), row.Status.Label())
	}
	b.WriteString(cats.String())
	b.WriteString("\n")

	if len(r.PaymentMethods) > 0 {
		b.WriteString(titleStyle.Render("Medios de pago"))
		b.WriteString("\n")
		pay := newTable("Medio", "Total", "%")
		for _, row := range r.PaymentMethods {
			pay.Row(row.Method, row.Total.Display(), fmt.Sprintf("%.1f%%", row.Percent))
		}
		b.WriteString(pay.String())
		b.WriteString("\n")
	}

	if len(r.Alerts) > 0 {
		b.WriteString(titleStyle.Render("Alertas"))
		b.WriteString("\n")
		for _, a := range r.Alerts {
			b.WriteString(alertStyle(a).Render("• " + a.Message))
			b.WriteString("\n")
		}
	}

	_, _ = io.WriteString(w, b.String())
}

func RenderIncomes(w io.Writer, incomes []core.Income) {
	if len(incomes) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("No hay ingresos registrados."))
		return
	}
	t := newTable("ID", "Fecha", "Descripción", "Monto")
	var total core.Money
	for _, in := range incomes {
		t.Row(in.ID, in.Date.String(), in.Description, in.Amount.Display())
		total = total.Add(in.Amount)
	}
	t.Row("", "", "Total", total.Display())
	_, _ = fmt.Fprintln(w, t.String())
}

func RenderExpenses(w io.Writer, expenses []core.Expense) {
	if len(expenses) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("No hay gastos registrados."))
		return
	}
	t := newTable("ID", "Fecha", "Descripción", "Categoría", "Subcategoría", "Medio", "Monto")
	var total core.Money
	for _, e := range expenses {
		t.Row(e.ID, e.Date.String(), e.Description, e.Category, e.Subcategory, e.PaymentMethod, e.Amount.Display())
		total = total.Add(e.Amount)
	}
	t.Row("", "", "Total", "", "", "", total.Display())
	_, _ = fmt.Fprintln(w, t.String())
}

// RenderBudget prints a month's budget in taxonomy order.
func RenderBudget(w io.Writer, month core.MonthKey, tax core.Taxonomy, budget map[string]core.Money) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Presupuesto "+string(month)))
	t := newTable("Categoría", "Monto")
	for _, name := range tax.CategoryNames() {
		t.Row(name, budget[name].Display())
	}
	t.Row("Total", report.BudgetTotal(tax, budget).Display())
	_, _ = fmt.Fprintln(w, t.String())
}

func RenderMonths(w io.Writer, months []core.MonthKey) {
	if len(months) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("No hay meses con registros."))
		return
	}
	for _, m := range months {
		_, _ = fmt.Fprintln(w, string(m))
	}
}

func RenderTaxonomy(w io.Writer, tax core.Taxonomy) {
	t := newTable("Categoría", "Subcategorías")
	for _, c := range tax.Categories {
		t.Row(c.Name, strings.Join(c.Subcategories, ", "))
	}
	_, _ = fmt.Fprintln(w, t.String())
	_, _ = fmt.Fprintln(w, "Medios de pago: "+strings.Join(tax.PaymentMethods, ", "))
}
