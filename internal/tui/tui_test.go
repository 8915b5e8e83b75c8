package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presupuesto/internal/core"
	"presupuesto/internal/report"
)

func sampleRecords() core.Records {
	return core.Records{
		Incomes: []core.Income{
			{ID: "i1", Amount: core.Money{Cents: 100000}, Description: "Salario", Date: core.NewDate(2025, 3, 1)},
		},
		Expenses: []core.Expense{
			{ID: "e1", Amount: core.Money{Cents: 120000}, Description: "Renta", Category: "Vivienda",
				Subcategory: "Hipoteca/Alquiler", PaymentMethod: "Transferencia", Date: core.NewDate(2025, 3, 5)},
		},
	}
}

func TestRenderReport(t *testing.T) {
	tax := core.DefaultTaxonomy()
	budgets := core.Budgets{"2025-03": {"Vivienda": core.Money{Cents: 100000}}}
	r := report.Build(tax, sampleRecords(), budgets, core.MonthFilter("2025-03"))

	var buf bytes.Buffer
	RenderReport(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Resumen 2025-03")
	assert.Contains(t, out, "$1,000.00")
	assert.Contains(t, out, "-$200.00")
	assert.Contains(t, out, "-20.00%")
	assert.Contains(t, out, "Presupuesto total")
	assert.Contains(t, out, "Excedido")
	assert.Contains(t, out, "Transferencia")
	assert.Contains(t, out, "Vivienda ($200.00 sobre presupuesto)")
}

func TestRenderReportAllMonths(t *testing.T) {
	r := report.Build(core.DefaultTaxonomy(), core.EmptyRecords(), core.Budgets{}, core.MonthFilter(core.AllMonths))

	var buf bytes.Buffer
	RenderReport(&buf, r)

	assert.Contains(t, buf.String(), "Todos los meses")
	assert.Contains(t, buf.String(), "N/A")
	assert.NotContains(t, buf.String(), "Presupuesto total")
	assert.NotContains(t, buf.String(), "Medios de pago")
}

func TestRenderRecordLists(t *testing.T) {
	recs := sampleRecords()

	var buf bytes.Buffer
	RenderIncomes(&buf, recs.Incomes)
	assert.Contains(t, buf.String(), "Salario")
	assert.Contains(t, buf.String(), "2025-03-01")

	buf.Reset()
	RenderExpenses(&buf, recs.Expenses)
	assert.Contains(t, buf.String(), "Hipoteca/Alquiler")
	assert.Contains(t, buf.String(), "$1,200.00")

	buf.Reset()
	RenderExpenses(&buf, nil)
	assert.Contains(t, buf.String(), "No hay gastos registrados.")
}

func TestRenderBudget(t *testing.T) {
	tax := core.DefaultTaxonomy()
	budget := core.Budgets{"2025-03": {"Vivienda": core.Money{Cents: 150050}}}.Month("2025-03", tax)

	var buf bytes.Buffer
	RenderBudget(&buf, "2025-03", tax, budget)

	assert.Contains(t, buf.String(), "Presupuesto 2025-03")
	assert.Contains(t, buf.String(), "Ropa y Calzado")
	assert.Contains(t, buf.String(), "$1,500.50")
}

func TestRenderMonthsAndTaxonomy(t *testing.T) {
	var buf bytes.Buffer
	RenderMonths(&buf, []core.MonthKey{"2025-02", "2025-03"})
	assert.Equal(t, "2025-02\n2025-03\n", buf.String())

	buf.Reset()
	RenderTaxonomy(&buf, core.DefaultTaxonomy())
	assert.Contains(t, buf.String(), "Alimentación")
	assert.Contains(t, buf.String(), "Medios de pago: Efectivo, Tarjeta de Crédito, Transferencia")
}

func TestIncomeInput(t *testing.T) {
	in := IncomeInput{Amount: "1,500.00", Description: "Bono", Date: "2025-03-10"}
	require.True(t, in.Complete())

	income, err := in.Income()
	require.NoError(t, err)
	assert.Equal(t, int64(150000), income.Amount.Cents)
	assert.Equal(t, "2025-03-10", income.Date.String())

	_, err = IncomeInput{Amount: "abc", Description: "x"}.Income()
	assert.True(t, core.IsValidation(err))

	assert.False(t, IncomeInput{Amount: "10"}.Complete())
}

func TestExpenseInput(t *testing.T) {
	e := ExpenseInput{Amount: "150.99", Description: "Mercado", Category: "Alimentación", Subcategory: "Supermercado", PaymentMethod: "Efectivo"}
	require.True(t, e.Complete())

	expense, err := e.Expense()
	require.NoError(t, err)
	assert.Equal(t, int64(15099), expense.Amount.Cents)
	assert.Equal(t, core.Today().String(), expense.Date.String())

	e.Subcategory = ""
	assert.False(t, e.Complete())
}

func TestFieldValidators(t *testing.T) {
	assert.NoError(t, validateAmount("10.50"))
	assert.Error(t, validateAmount("0"))
	assert.Error(t, validateAmount("-3"))
	assert.NoError(t, validateDescription("Renta"))
	assert.Error(t, validateDescription("  "))
	assert.NoError(t, validateDate(""))
	assert.Error(t, validateDate("10/03/2025"))
}
