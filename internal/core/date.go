package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const (
	// DateLayout is the on-disk and wire format of record dates.
	DateLayout = "2006-01-02"
	// MonthLayout is the format of month keys.
	MonthLayout = "2006-01"
	// AllMonths selects every record regardless of date.
	AllMonths = "all"
)

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current date in UTC.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey returns the YYYY-MM key of the month the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKey(d.Format(MonthLayout))
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey identifies a budgeting period in YYYY-MM form.
type MonthKey string

// ParseMonthKey validates s as a YYYY-MM key.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(MonthLayout, s); err != nil {
		return "", ErrInvalidMonth
	}
	return MonthKey(s), nil
}

// CurrentMonth returns the month key of today.
func CurrentMonth() MonthKey {
	return Today().MonthKey()
}

func (k MonthKey) String() string { return string(k) }

// MonthFilter selects either one month or every record.
type MonthFilter string

// ParseMonthFilter accepts "all" (or empty) and YYYY-MM keys.
func ParseMonthFilter(s string) (MonthFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AllMonths) {
		return MonthFilter(AllMonths), nil
	}
	k, err := ParseMonthKey(s)
	if err != nil {
		return "", err
	}
	return MonthFilter(k), nil
}

// IsAll reports whether the filter selects every month.
func (f MonthFilter) IsAll() bool { return f == AllMonths || f == "" }

// Month returns the selected month key; ok is false for the "all" filter.
func (f MonthFilter) Month() (MonthKey, bool) {
	if f.IsAll() {
		return "", false
	}
	return MonthKey(f), true
}

// Matches reports whether d falls inside the filter.
func (f MonthFilter) Matches(d Date) bool {
	if f.IsAll() {
		return true
	}
	return d.MonthKey() == MonthKey(f)
}
