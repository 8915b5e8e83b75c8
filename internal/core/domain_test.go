package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestIncomeValidate(t *testing.T) {
	good := Income{Amount: Money{Cents: 100000}, Description: "Salario", Date: NewDate(2025, 3, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Income{
		{Amount: Money{Cents: 0}, Description: "a", Date: NewDate(2025, 3, 1)},
		{Amount: Money{Cents: 1}, Description: "  ", Date: NewDate(2025, 3, 1)},
		{Amount: Money{Cents: 1}, Description: "a"},
	}
	for i, in := range bads {
		err := in.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	tax := DefaultTaxonomy()
	good := Expense{
		Amount:        Money{Cents: 120000},
		Description:   "Renta",
		Category:      "Vivienda",
		Subcategory:   "Hipoteca/Alquiler",
		PaymentMethod: "Transferencia",
		Date:          NewDate(2025, 3, 5),
	}
	if err := good.Validate(tax); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		mutate func(*Expense)
		want   error
	}{
		{func(e *Expense) { e.Amount = Money{} }, ErrInvalidAmount},
		{func(e *Expense) { e.Description = "" }, ErrEmptyDescription},
		{func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{func(e *Expense) { e.Category = "Viajes" }, ErrUnknownCategory},
		{func(e *Expense) { e.Subcategory = "Cine" }, ErrUnknownSubcategory},
		{func(e *Expense) { e.PaymentMethod = "Bitcoin" }, ErrUnknownPaymentMethod},
	}
	for i, tc := range cases {
		e := good
		tc.mutate(&e)
		if err := e.Validate(tax); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestRecordsJSONLayout(t *testing.T) {
	r := Records{
		Incomes: []Income{{ID: "a", Amount: Money{Cents: 100000}, Description: "Salario", Date: NewDate(2025, 3, 1)}},
		Expenses: []Expense{{
			ID: "b", Amount: Money{Cents: 120000}, Description: "Renta",
			Category: "Vivienda", Subcategory: "Hipoteca/Alquiler", PaymentMethod: "Efectivo",
			Date: NewDate(2025, 3, 5),
		}},
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"ingresos":[{"id":"a","monto":1000.00,"descripcion":"Salario","fecha":"2025-03-01"}],` +
		`"gastos":[{"id":"b","monto":1200.00,"descripcion":"Renta","categoria":"Vivienda","subcategoria":"Hipoteca/Alquiler","medio_pago":"Efectivo","fecha":"2025-03-05"}]}`
	if string(b) != want {
		t.Fatalf("unexpected layout:\n got %s\nwant %s", b, want)
	}
}

func TestMonthFilter(t *testing.T) {
	f, err := ParseMonthFilter("")
	if err != nil || !f.IsAll() {
		t.Fatalf("empty filter should select all, got %q (err=%v)", f, err)
	}
	f, err = ParseMonthFilter("2025-03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.Matches(NewDate(2025, 3, 31)) || f.Matches(NewDate(2025, 4, 1)) {
		t.Fatalf("unexpected match result for %q", f)
	}
	if _, err := ParseMonthFilter("2025-13"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected invalid month, got %v", err)
	}
}

func TestBudgetsMonthFillsCategories(t *testing.T) {
	tax := DefaultTaxonomy()
	b := Budgets{"2025-03": {"Vivienda": Money{Cents: 100000}}}
	m := b.Month("2025-03", tax)
	if len(m) != len(tax.Categories) {
		t.Fatalf("expected %d categories, got %d", len(tax.Categories), len(m))
	}
	if m["Vivienda"].Cents != 100000 || m["Salud"].Cents != 0 {
		t.Fatalf("unexpected month view %v", m)
	}
	if len(b["2025-03"]) != 1 {
		t.Fatalf("Month must not modify the receiver")
	}
}

func TestDescriptionLengthIsNotPartOfValidate(t *testing.T) {
	long := strings.Repeat("a", MaxDescriptionLen+1)
	in := Income{Amount: Money{Cents: 100}, Description: long, Date: NewDate(2025, 3, 1)}
	if err := in.Validate(); err != nil {
		t.Fatalf("stored long description should validate, got %v", err)
	}
	if err := CheckDescriptionLen(long); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
	if err := CheckDescriptionLen(strings.Repeat("ñ", MaxDescriptionLen)); err != nil {
		t.Fatalf("limit counts runes, got %v", err)
	}
}
