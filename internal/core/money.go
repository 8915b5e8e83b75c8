// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Conversion from and to the decimal
// numbers stored in the JSON documents goes through shopspring/decimal so no
// float rounding leaks into the stored values.
package core

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents.
type Money struct {
	Cents int64
}

// MoneyFromDecimal rounds d half away from zero to whole cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount as a float64 for display and percentages.
// Use cents for arithmetic.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// String formats the amount with two decimals, e.g. "1200.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Display formats the amount with thousands separators and a dollar sign,
// e.g. "$1,200.50" or "-$200.00".
func (m Money) Display() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}

// Validate checks the amount is strictly positive, as required for records.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON writes the amount as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number (or a quoted number) in currency units.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return ErrInvalidAmount
	}
	*m = MoneyFromDecimal(d)
	return nil
}

// ParseMoney parses user input into a non-negative amount.
//
// The dot is the only decimal separator. Commas are thousands separators and
// are dropped wherever they appear, so "1,500.00" is 1500 and "150,99" is
// 15099.
//
// Examples:
//
//	ParseMoney("12.34")    -> 1234 cents
//	ParseMoney("12,34")    -> 123400 cents
//	ParseMoney("1,500.00") -> 150000 cents
//	ParseMoney("12.345")   -> 1235 cents (half-up)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Money{}, ErrInvalidAmount
		}
	}
	if strings.Count(s, ".") > 1 || s == "." {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Guard the int64 cents range.
	if d.GreaterThan(decimal.New(1, 15)) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

// ParseDecimalToCents parses a strictly positive amount into cents.
func ParseDecimalToCents(s string) (int64, error) {
	m, err := ParseMoney(s)
	if err != nil {
		return 0, err
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m.Cents, nil
}
