package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presupuesto/internal/core"
)

func TestJSONRecordFileMissingIsEmpty(t *testing.T) {
	f := NewJSONRecordFile(filepath.Join(t.TempDir(), "presupuesto_familiar.json"))

	r, err := f.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, r.Incomes)
	assert.Empty(t, r.Expenses)
	assert.NotNil(t, r.Incomes)
}

func TestJSONRecordFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "presupuesto_familiar.json")
	f := NewJSONRecordFile(path)

	in := salary()
	in.ID = "inc-1"
	e := rent()
	e.ID = "exp-1"
	want := core.Records{Incomes: []core.Income{in}, Expenses: []core.Expense{e}}

	require.NoError(t, f.SaveRecords(ctx, want))
	got, err := f.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(raw)
	assert.True(t, strings.HasPrefix(doc, "{\n    \"ingresos\": ["), "document should be indented: %s", doc)
	assert.Contains(t, doc, `"monto": 1000.00`)
	assert.Contains(t, doc, `"categoria": "Vivienda"`)
	assert.Contains(t, doc, `"fecha": "2025-03-05"`)
}

func TestJSONRecordFileReadsLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presupuesto_familiar.json")
	legacy := `{
    "ingresos": [{"monto": 1500.0, "descripcion": "Salario", "fecha": "2024-11-30"}],
    "gastos": [{"monto": 45.5, "descripcion": "Pan", "categoria": "Alimentación",
                "subcategoria": "Supermercado", "fecha": "2024-12-01"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	r, err := NewJSONRecordFile(path).LoadRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Incomes, 1)
	require.Len(t, r.Expenses, 1)
	assert.Equal(t, int64(150000), r.Incomes[0].Amount.Cents)
	assert.Equal(t, int64(4550), r.Expenses[0].Amount.Cents)
	assert.Empty(t, r.Expenses[0].ID)
	assert.Empty(t, r.Expenses[0].PaymentMethod)
}

func TestJSONRecordFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presupuesto_familiar.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r, err := NewJSONRecordFile(path).LoadRecords(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsStorageUnavailable(err))
	assert.Empty(t, r.Incomes)
	assert.Empty(t, r.Expenses)
}

func TestJSONRecordFileUnwritable(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes the rename fail.
	path := filepath.Join(dir, "presupuesto_familiar.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := NewJSONRecordFile(path).SaveRecords(context.Background(), core.EmptyRecords())
	require.Error(t, err)
	assert.True(t, core.IsStorageUnavailable(err))
}

func TestJSONBudgetFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "presupuesto_mensual.json")
	f := NewJSONBudgetFile(path)

	b, err := f.LoadBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, b)

	want := core.Budgets{"2025-03": {"Vivienda": core.Money{Cents: 100000}, "Salud": core.Money{}}}
	require.NoError(t, f.SaveBudgets(ctx, want))

	got, err := f.LoadBudgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"2025-03": {`)
	assert.Contains(t, string(raw), `"Vivienda": 1000.00`)
}
