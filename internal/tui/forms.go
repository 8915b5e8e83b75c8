package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"presupuesto/internal/core"
)

// ErrNotInteractive is returned when a form would be needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("missing required flags and stdin is not a terminal")

// IncomeInput holds the raw text of an income being entered.
type IncomeInput struct {
	Amount      string
	Description string
	Date        string
}

// Complete reports whether every required field has a value.
func (in IncomeInput) Complete() bool {
	return strings.TrimSpace(in.Amount) != "" && strings.TrimSpace(in.Description) != ""
}

// Income converts the input; an empty date means today.
func (in IncomeInput) Income() (core.Income, error) {
	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return core.Income{}, err
	}
	date, err := parseDateOrToday(in.Date)
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{Amount: amount, Description: in.Description, Date: date}, nil
}

// ExpenseInput holds the raw text of an expense being entered.
type ExpenseInput struct {
	Amount        string
	Description   string
	Category      string
	Subcategory   string
	PaymentMethod string
	Date          string
}

func (e ExpenseInput) Complete() bool {
	for _, v := range []string{e.Amount, e.Description, e.Category, e.Subcategory, e.PaymentMethod} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Expense converts the input; an empty date means today.
func (e ExpenseInput) Expense() (core.Expense, error) {
	amount, err := core.ParseMoney(e.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := parseDateOrToday(e.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Amount:        amount,
		Description:   e.Description,
		Category:      e.Category,
		Subcategory:   e.Subcategory,
		PaymentMethod: e.PaymentMethod,
		Date:          date,
	}, nil
}

func parseDateOrToday(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}

func validateAmount(s string) error {
	_, err := core.ParseDecimalToCents(s)
	if err != nil {
		return errors.New("monto no válido: debe ser mayor que cero")
	}
	return nil
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("la descripción no puede estar vacía")
	}
	if len([]rune(s)) > core.MaxDescriptionLen {
		return fmt.Errorf("la descripción no puede superar %d caracteres", core.MaxDescriptionLen)
	}
	return nil
}

func validateDate(s string) error {
	if _, err := parseDateOrToday(s); err != nil {
		return errors.New("fecha no válida (AAAA-MM-DD)")
	}
	return nil
}

// RunIncomeForm asks for the income fields, prefilled with in.
func RunIncomeForm(in *IncomeInput) error {
	if !IsTerminal() {
		return ErrNotInteractive
	}
	if in.Date == "" {
		in.Date = core.Today().String()
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Monto").Value(&in.Amount).Validate(validateAmount),
			huh.NewInput().Title("Descripción").Value(&in.Description).Validate(validateDescription),
			huh.NewInput().Title("Fecha").Description("AAAA-MM-DD").Value(&in.Date).Validate(validateDate),
		),
	).Run()
}

// RunExpenseForm asks for the expense fields. The subcategory list follows
// the selected category.
func RunExpenseForm(tax core.Taxonomy, e *ExpenseInput) error {
	if !IsTerminal() {
		return ErrNotInteractive
	}
	if e.Date == "" {
		e.Date = core.Today().String()
	}
	if !tax.HasCategory(e.Category) {
		e.Category = tax.CategoryNames()[0]
	}
	if !tax.HasPaymentMethod(e.PaymentMethod) {
		e.PaymentMethod = tax.DefaultPaymentMethod()
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Monto").Value(&e.Amount).Validate(validateAmount),
			huh.NewInput().Title("Descripción").Value(&e.Description).Validate(validateDescription),
			huh.NewInput().Title("Fecha").Description("AAAA-MM-DD").Value(&e.Date).Validate(validateDate),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Categoría").
				Options(huh.NewOptions(tax.CategoryNames()...)...).
				Value(&e.Category),
			huh.NewSelect[string]().
				Title("Subcategoría").
				OptionsFunc(func() []huh.Option[string] {
					return huh.NewOptions(tax.Subcategories(e.Category)...)
				}, &e.Category).
				Value(&e.Subcategory),
			huh.NewSelect[string]().
				Title("Medio de pago").
				Options(huh.NewOptions(tax.PaymentMethods...)...).
				Value(&e.PaymentMethod),
		),
	).Run()
}

// Confirm asks a yes/no question. It answers no when stdin is not a
// terminal.
func Confirm(question string) (bool, error) {
	if !IsTerminal() {
		return false, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Sí").
		Negative("No").
		WithButtonAlignment(lipgloss.Left).
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return ok, nil
}

// PromptConfirmation asks the user to type phrase and returns what was typed.
func PromptConfirmation(phrase string) (string, error) {
	if !IsTerminal() {
		return "", ErrNotInteractive
	}
	var typed string
	err := huh.NewInput().
		Title(fmt.Sprintf("Escriba %q para eliminar todos los datos", phrase)).
		Value(&typed).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return typed, nil
}
