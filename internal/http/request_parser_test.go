package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"presupuesto/internal/core"
)

func TestParseMonthFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    core.MonthFilter
		wantErr bool
	}{
		{"missing means all", url.Values{}, core.AllMonths, false},
		{"explicit all", url.Values{"month": {"all"}}, core.AllMonths, false},
		{"month key", url.Values{"month": {"2025-03"}}, "2025-03", false},
		{"invalid month", url.Values{"month": {"2025-13"}}, "", true},
		{"garbage", url.Values{"month": {"marzo"}}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthFilter(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonthFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMonthFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"1", true},
		{"TRUE", true},
		{"false", false},
		{"", false},
		{"yes", false},
	}
	for _, tt := range tests {
		if got := ParseConfirm(tt.in); got != tt.want {
			t.Errorf("ParseConfirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "descripcion": "Salario", "monto": 1200.50}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}
	if desc := parser.Get(keyDescription...); desc != "Salario" {
		t.Errorf("Get(description) = %q, want 'Salario'", desc)
	}
	// Numbers keep their literal text.
	if amount := parser.Get(keyAmount...); amount != "1200.50" {
		t.Errorf("Get(amount) = %q, want '1200.50'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "amount=456&description=form+test&date="
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if v := parser.Get(keyAmount...); v != "456" {
		t.Errorf("Get(amount) = %q, want '456'", v)
	}
	if v := parser.Get(keyDescription...); v != "form test" {
		t.Errorf("Get(description) = %q, want 'form test'", v)
	}
	if !parser.Has(keyDate...) {
		t.Error("Has(date) should be true for an empty field")
	}
	if parser.Has(keyCategory...) {
		t.Error("Has(category) should be false")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"monto": `))

	err := NewRequestBodyParser(req).Parse()
	if err == nil {
		t.Fatal("Parse() should fail on malformed JSON")
	}
	if core.IsValidation(err) {
		t.Error("malformed body is not a validation error")
	}
}

func TestRequestBodyParser_SanitizesControlCharacters(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"descripcion": "  Renta\u0000 marzo  "}`))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get(keyDescription...); got != "Renta marzo" {
		t.Errorf("Get(description) = %q, want %q", got, "Renta marzo")
	}
}

func TestParseExpense_OverlaysProvidedFields(t *testing.T) {
	base := core.Expense{
		ID:            "e1",
		Amount:        core.Money{Cents: 120000},
		Description:   "Renta",
		Category:      "Vivienda",
		Subcategory:   "Hipoteca/Alquiler",
		PaymentMethod: "Transferencia",
		Date:          core.NewDate(2025, 3, 5),
	}
	req := httptest.NewRequest(http.MethodPut, "/test", strings.NewReader(`{"monto": "1,300.00", "fecha": "2025-04-05"}`))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, err := parseExpense(parser, base)
	if err != nil {
		t.Fatalf("parseExpense() error = %v", err)
	}
	if got.Amount.Cents != 130000 {
		t.Errorf("Amount = %d, want 130000", got.Amount.Cents)
	}
	if got.Date.String() != "2025-04-05" {
		t.Errorf("Date = %s, want 2025-04-05", got.Date)
	}
	if got.Description != "Renta" || got.Category != "Vivienda" || got.PaymentMethod != "Transferencia" {
		t.Errorf("unchanged fields were modified: %+v", got)
	}
}

func TestParseIncome_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative amount", `{"monto": "-5", "descripcion": "x"}`},
		{"text amount", `monto=abc&descripcion=x`},
		{"bad date", `{"monto": 5, "descripcion": "x", "fecha": "2025-02-30"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			parser := NewRequestBodyParser(req)
			if err := parser.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			_, err := parseIncome(parser, core.Income{})
			if !core.IsValidation(err) {
				t.Errorf("parseIncome() error = %v, want validation error", err)
			}
		})
	}
}

func TestParseIncome_DefaultsToToday(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`monto=10&descripcion=Venta`))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	in, err := parseIncome(parser, core.Income{})
	if err != nil {
		t.Fatalf("parseIncome() error = %v", err)
	}
	if in.Date.String() != core.Today().String() {
		t.Errorf("Date = %s, want today", in.Date)
	}
}
