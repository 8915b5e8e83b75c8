package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presupuesto/internal/core"
	"presupuesto/internal/report"
)

func TestSheetName(t *testing.T) {
	tests := []struct {
		base   string
		filter core.MonthFilter
		want   string
	}{
		{"Resumen", "2025-03", "Resumen 2025-03"},
		{"Resumen", core.AllMonths, "Resumen Total"},
		{"  ", "2025-03", "Resumen 2025-03"},
		{"Budget", "", "Budget Total"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetName(tt.base, tt.filter))
		})
	}
}

func TestNewSummary(t *testing.T) {
	tax := core.DefaultTaxonomy()
	recs := core.Records{
		Incomes: []core.Income{{ID: "i1", Amount: core.Money{Cents: 100000}, Description: "Salario", Date: core.NewDate(2025, 3, 1)}},
		Expenses: []core.Expense{{
			ID: "e1", Amount: core.Money{Cents: 120000}, Description: "Renta",
			Category: "Vivienda", Subcategory: "Hipoteca/Alquiler", PaymentMethod: "Transferencia",
			Date: core.NewDate(2025, 3, 5),
		}},
	}
	budgets := core.Budgets{"2025-03": {"Vivienda": core.Money{Cents: 100000}}}

	s := NewSummary("Resumen", report.Build(tax, recs, budgets, "2025-03"))
	assert.Equal(t, "Resumen 2025-03", s.Sheet)

	require.GreaterOrEqual(t, len(s.Rows), 9)
	assert.Equal(t, []any{"Resumen", "2025-03"}, s.Rows[0])
	assert.Equal(t, []any{"Ingresos", "1000.00"}, s.Rows[2])
	assert.Equal(t, []any{"Gastos", "1200.00"}, s.Rows[3])
	assert.Equal(t, []any{"Balance", "-200.00"}, s.Rows[4])
	assert.Equal(t, []any{"Tasa de ahorro", "-20.00%"}, s.Rows[5])
	assert.Equal(t, []any{"Presupuesto total", "1000.00"}, s.Rows[6])

	var vivienda []any
	for _, row := range s.Rows {
		if len(row) == 6 && row[0] == "Vivienda" {
			vivienda = row
		}
	}
	require.NotNil(t, vivienda)
	assert.Equal(t, "Excedido", vivienda[5])

	assert.Contains(t, s.Rows, []any{"Alertas"})
	assert.Contains(t, s.Rows, []any{"Vivienda ($200.00 sobre presupuesto)"})
}

func TestNewSummary_Empty(t *testing.T) {
	s := NewSummary("", report.Build(core.DefaultTaxonomy(), core.EmptyRecords(), core.Budgets{}, core.AllMonths))
	assert.Equal(t, "Resumen Total", s.Sheet)
	assert.Equal(t, []any{"Resumen", "Todos los meses"}, s.Rows[0])
	assert.Equal(t, []any{"Tasa de ahorro", "N/A"}, s.Rows[5])
	for _, row := range s.Rows {
		if len(row) == 1 {
			assert.NotEqual(t, "Alertas", row[0])
		}
	}
}
