package report

import (
	"fmt"

	"presupuesto/internal/core"
)

type AlertKind string

const (
	AlertNegativeBalance  AlertKind = "negative_balance"
	AlertCategoryExceeded AlertKind = "category_exceeded"
	AlertLowSavingsRate   AlertKind = "low_savings_rate"
	AlertHighSavingsRate  AlertKind = "high_savings_rate"
)

// Alert is one finding about a period. Category and Overage are set for
// AlertCategoryExceeded, SavingsRate for the savings alerts.
type Alert struct {
	Kind        AlertKind  `json:"kind"`
	Category    string     `json:"category,omitempty"`
	Overage     core.Money `json:"overage"`
	SavingsRate float64    `json:"savings_rate,omitempty"`
	Message     string     `json:"message"`
}

// Severity groups alerts for display: "critical", "warning" or "good".
func (a Alert) Severity() string {
	switch a.Kind {
	case AlertNegativeBalance:
		return "critical"
	case AlertHighSavingsRate:
		return "good"
	default:
		return "warning"
	}
}

// Alerts evaluates every rule independently and returns all that apply,
// in rule order.
func Alerts(t Totals, rows []CategoryRow) []Alert {
	var out []Alert
	if t.Balance.Cents < 0 {
		out = append(out, Alert{
			Kind:    AlertNegativeBalance,
			Message: "Gastos superan los ingresos",
		})
	}
	for _, r := range rows {
		if r.Budgeted.Cents > 0 && r.Spent.Cents > r.Budgeted.Cents {
			over := r.Spent.Sub(r.Budgeted)
			out = append(out, Alert{
				Kind:     AlertCategoryExceeded,
				Category: r.Category,
				Overage:  over,
				Message:  fmt.Sprintf("%s ($%s sobre presupuesto)", r.Category, over),
			})
		}
	}
	if rate, ok := t.SavingsRate(); ok {
		switch {
		case rate < LowSavingsThreshold:
			out = append(out, Alert{
				Kind:        AlertLowSavingsRate,
				SavingsRate: round2(rate),
				Message:     "Tasa de ahorro baja, considere reducir gastos opcionales",
			})
		case rate > HighSavingsThreshold:
			out = append(out, Alert{
				Kind:        AlertHighSavingsRate,
				SavingsRate: round2(rate),
				Message:     "Mantiene una buena tasa de ahorro",
			})
		}
	}
	return out
}
