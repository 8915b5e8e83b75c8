package core

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxDescriptionLen bounds newly entered descriptions. Stored records may
// hold longer ones; see CheckDescriptionLen.
const MaxDescriptionLen = 200

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind names one of the two record collections.
	Kind string

	Income struct {
		ID          string `json:"id"`
		Amount      Money  `json:"monto"`
		Description string `json:"descripcion"`
		Date        Date   `json:"fecha"`
	}

	Expense struct {
		ID            string `json:"id"`
		Amount        Money  `json:"monto"`
		Description   string `json:"descripcion"`
		Category      string `json:"categoria"`
		Subcategory   string `json:"subcategoria"`
		PaymentMethod string `json:"medio_pago"`
		Date          Date   `json:"fecha"`
	}

	// Records is the full content of the records document.
	Records struct {
		Incomes  []Income  `json:"ingresos"`
		Expenses []Expense `json:"gastos"`
	}

	// Budgets maps a month key to the budgeted amount per category.
	Budgets map[MonthKey]map[string]Money
)

// ParseKind accepts "income"/"expense" and the Spanish document names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes", "ingreso", "ingresos":
		return KindIncome, nil
	case "expense", "expenses", "gasto", "gastos":
		return KindExpense, nil
	}
	return "", ErrUnknownKind
}

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// CheckDescriptionLen enforces MaxDescriptionLen. It is applied to text as it
// is entered, not by Validate, so records loaded with a longer description
// stay editable as long as the description is left as is.
func CheckDescriptionLen(s string) error {
	if utf8.RuneCountInString(s) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if err := validateDescription(i.Description); err != nil {
		return err
	}
	return i.Date.Validate()
}

// Validate checks the expense fields and its consistency with the taxonomy.
func (e Expense) Validate(t Taxonomy) error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !t.HasCategory(e.Category) {
		return ErrUnknownCategory
	}
	if !t.HasSubcategory(e.Category, e.Subcategory) {
		return ErrUnknownSubcategory
	}
	if !t.HasPaymentMethod(e.PaymentMethod) {
		return ErrUnknownPaymentMethod
	}
	return nil
}

// Normalize trims user-entered text fields.
func (i Income) Normalize() Income {
	i.Description = strings.TrimSpace(i.Description)
	return i
}

// Normalize trims user-entered text fields.
func (e Expense) Normalize() Expense {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	e.Subcategory = strings.TrimSpace(e.Subcategory)
	e.PaymentMethod = strings.TrimSpace(e.PaymentMethod)
	return e
}

// Clone returns a deep copy.
func (r Records) Clone() Records {
	return Records{
		Incomes:  append([]Income{}, r.Incomes...),
		Expenses: append([]Expense{}, r.Expenses...),
	}
}

// EmptyRecords is the content of a missing records document.
func EmptyRecords() Records {
	return Records{Incomes: []Income{}, Expenses: []Expense{}}
}

// Clone returns a deep copy.
func (b Budgets) Clone() Budgets {
	out := make(Budgets, len(b))
	for month, cats := range b {
		inner := make(map[string]Money, len(cats))
		for cat, amount := range cats {
			inner[cat] = amount
		}
		out[month] = inner
	}
	return out
}

// Month returns the budget of month with every taxonomy category present,
// missing ones at zero. The receiver is not modified.
func (b Budgets) Month(month MonthKey, t Taxonomy) map[string]Money {
	out := make(map[string]Money, len(t.Categories))
	for _, c := range t.Categories {
		out[c.Name] = Money{}
	}
	for cat, amount := range b[month] {
		out[cat] = amount
	}
	return out
}
