// This file implements utilities for parsing and validating HTTP request data.
// Handlers accept both JSON bodies (API clients) and form-encoded bodies
// (htmx forms); field names are accepted in English and Spanish.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"presupuesto/internal/core"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

var errBadBody = errors.New("malformed request body")

// Accepted field names, English first.
var (
	keyAmount        = []string{"amount", "monto"}
	keyDescription   = []string{"description", "descripcion"}
	keyDate          = []string{"date", "fecha"}
	keyCategory      = []string{"category", "categoria"}
	keySubcategory   = []string{"subcategory", "subcategoria"}
	keyPaymentMethod = []string{"payment_method", "medio_pago"}
	keyConfirmation  = []string{"confirmation", "confirmacion"}
)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = errors.Join(errBadBody, p.err)
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = errors.Join(errBadBody, err)
			return p.err
		}
		return nil
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		p.err = errors.Join(errBadBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns the first present value among keys, sanitized.
func (p *RequestBodyParser) Get(keys ...string) string {
	v, _ := p.lookup(keys)
	return v
}

// Has reports whether any of keys was sent, even empty.
func (p *RequestBodyParser) Has(keys ...string) bool {
	_, ok := p.lookup(keys)
	return ok
}

func (p *RequestBodyParser) lookup(keys []string) (string, bool) {
	for _, key := range keys {
		if p.jsonData != nil {
			if val, ok := p.jsonData[key]; ok {
				return sanitizeInput(stringValue(val)), true
			}
		}
		if p.formData != nil {
			if vals, ok := p.formData[key]; ok && len(vals) > 0 {
				return sanitizeInput(vals[0]), true
			}
		}
	}
	return "", false
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseMonthFilter reads the "month" query parameter; missing means all.
func ParseMonthFilter(query url.Values) (core.MonthFilter, error) {
	return core.ParseMonthFilter(query.Get("month"))
}

// ParseConfirm reads a boolean confirmation flag; anything unparseable is
// false.
func ParseConfirm(v string) bool {
	ok, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && ok
}

// parseIncome builds an income from the body, starting from base. Fields
// absent from the body keep base's value, so base is the zero value for a
// create and the stored record for an edit.
func parseIncome(p *RequestBodyParser, base core.Income) (core.Income, error) {
	in := base
	if p.Has(keyAmount...) {
		m, err := core.ParseMoney(p.Get(keyAmount...))
		if err != nil {
			return core.Income{}, err
		}
		in.Amount = m
	}
	if p.Has(keyDescription...) {
		in.Description = p.Get(keyDescription...)
	}
	date, err := parseDateField(p, base.Date)
	if err != nil {
		return core.Income{}, err
	}
	in.Date = date
	return in, nil
}

// parseExpense is parseIncome for expenses.
func parseExpense(p *RequestBodyParser, base core.Expense) (core.Expense, error) {
	e := base
	if p.Has(keyAmount...) {
		m, err := core.ParseMoney(p.Get(keyAmount...))
		if err != nil {
			return core.Expense{}, err
		}
		e.Amount = m
	}
	if p.Has(keyDescription...) {
		e.Description = p.Get(keyDescription...)
	}
	if p.Has(keyCategory...) {
		e.Category = p.Get(keyCategory...)
	}
	if p.Has(keySubcategory...) {
		e.Subcategory = p.Get(keySubcategory...)
	}
	if p.Has(keyPaymentMethod...) {
		e.PaymentMethod = p.Get(keyPaymentMethod...)
	}
	date, err := parseDateField(p, base.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date = date
	return e, nil
}

// parseDateField returns the body date, or fallback when absent or empty.
// A zero fallback becomes today.
func parseDateField(p *RequestBodyParser, fallback core.Date) (core.Date, error) {
	if v := p.Get(keyDate...); v != "" {
		return core.ParseDate(v)
	}
	if fallback.IsZero() {
		return core.Today(), nil
	}
	return fallback, nil
}
