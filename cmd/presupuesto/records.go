package main

import (
	"context"
	"fmt"

	"presupuesto/internal/core"
	"presupuesto/internal/tui"
)

type IncomeCmd struct {
	Add    IncomeAddCmd    `cmd:"" help:"Record an income."`
	List   IncomeListCmd   `cmd:"" help:"List incomes."`
	Edit   IncomeEditCmd   `cmd:"" help:"Change an income."`
	Delete IncomeDeleteCmd `cmd:"" help:"Delete an income."`
}

type IncomeAddCmd struct {
	Amount      string `short:"a" help:"Amount, e.g. 1500.00 or 1.500,00."`
	Description string `short:"d" help:"Description."`
	Date        string `help:"Date (YYYY-MM-DD); defaults to today."`
}

// Run opens a form for whatever required flag is missing.
func (c *IncomeAddCmd) Run(a *App) error {
	ctx := context.Background()
	input := tui.IncomeInput{Amount: c.Amount, Description: c.Description, Date: c.Date}
	if !input.Complete() {
		if err := tui.RunIncomeForm(&input); err != nil {
			return err
		}
	}
	in, err := input.Income()
	if err != nil {
		return err
	}

	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	created, outcome, err := s.Service.AddIncome(ctx, in)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	tui.PrintInfof(a.out, "id %s", created.ID)
	return nil
}

type IncomeListCmd struct {
	Month string `help:"Month (YYYY-MM) or 'all'." default:"all"`
}

func (c *IncomeListCmd) Run(a *App) error {
	filter, err := core.ParseMonthFilter(c.Month)
	if err != nil {
		return err
	}
	s, err := a.open(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	tui.RenderIncomes(a.out, s.Service.Incomes(filter))
	return nil
}

type IncomeEditCmd struct {
	ID          string `arg:"" help:"Income id."`
	Amount      string `short:"a" help:"New amount."`
	Description string `short:"d" help:"New description."`
	Date        string `help:"New date (YYYY-MM-DD)."`
}

// Run changes only the fields given as flags.
func (c *IncomeEditCmd) Run(a *App) error {
	ctx := context.Background()
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	in, err := s.Service.Income(c.ID)
	if err != nil {
		return err
	}
	if c.Amount != "" {
		if in.Amount, err = core.ParseMoney(c.Amount); err != nil {
			return err
		}
	}
	if c.Description != "" {
		in.Description = c.Description
	}
	if c.Date != "" {
		if in.Date, err = core.ParseDate(c.Date); err != nil {
			return err
		}
	}

	_, outcome, err := s.Service.UpdateIncome(ctx, c.ID, in)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	return nil
}

type IncomeDeleteCmd struct {
	ID  string `arg:"" help:"Income id."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *IncomeDeleteCmd) Run(a *App) error {
	ctx := context.Background()
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	in, err := s.Service.Income(c.ID)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := tui.Confirm(fmt.Sprintf("¿Eliminar el ingreso %q de %s (%s)?", in.Description, in.Amount.Display(), in.Date))
		if err != nil || !ok {
			return err
		}
	}
	outcome, err := s.Service.DeleteRecord(ctx, core.KindIncome, c.ID)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	return nil
}

type ExpenseCmd struct {
	Add    ExpenseAddCmd    `cmd:"" help:"Record an expense."`
	List   ExpenseListCmd   `cmd:"" help:"List expenses."`
	Edit   ExpenseEditCmd   `cmd:"" help:"Change an expense."`
	Delete ExpenseDeleteCmd `cmd:"" help:"Delete an expense."`
}

type ExpenseAddCmd struct {
	Amount        string `short:"a" help:"Amount, e.g. 150.99 or 1,500.00."`
	Description   string `short:"d" help:"Description."`
	Category      string `short:"c" help:"Category."`
	Subcategory   string `short:"s" help:"Subcategory of the category."`
	PaymentMethod string `short:"p" name:"payment-method" help:"Payment method."`
	Date          string `help:"Date (YYYY-MM-DD); defaults to today."`
}

// Run opens a form for whatever required flag is missing.
func (c *ExpenseAddCmd) Run(a *App) error {
	ctx := context.Background()
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	input := tui.ExpenseInput{
		Amount:        c.Amount,
		Description:   c.Description,
		Category:      c.Category,
		Subcategory:   c.Subcategory,
		PaymentMethod: c.PaymentMethod,
		Date:          c.Date,
	}
	if !input.Complete() {
		if err := tui.RunExpenseForm(s.Taxonomy, &input); err != nil {
			return err
		}
	}
	e, err := input.Expense()
	if err != nil {
		return err
	}

	created, outcome, err := s.Service.AddExpense(ctx, e)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	tui.PrintInfof(a.out, "id %s", created.ID)
	return nil
}

type ExpenseListCmd struct {
	Month string `help:"Month (YYYY-MM) or 'all'." default:"all"`
}

func (c *ExpenseListCmd) Run(a *App) error {
	filter, err := core.ParseMonthFilter(c.Month)
	if err != nil {
		return err
	}
	s, err := a.open(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	tui.RenderExpenses(a.out, s.Service.Expenses(filter))
	return nil
}

type ExpenseEditCmd struct {
	ID            string `arg:"" help:"Expense id."`
	Amount        string `short:"a" help:"New amount."`
	Description   string `short:"d" help:"New description."`
	Category      string `short:"c" help:"New category."`
	Subcategory   string `short:"s" help:"New subcategory."`
	PaymentMethod string `short:"p" name:"payment-method" help:"New payment method."`
	Date          string `help:"New date (YYYY-MM-DD)."`
}

// Run changes only the fields given as flags. The edited expense is
// validated against the current taxonomy.
func (c *ExpenseEditCmd) Run(a *App) error {
	ctx := context.Background()
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.Service.Expense(c.ID)
	if err != nil {
		return err
	}
	if c.Amount != "" {
		if e.Amount, err = core.ParseMoney(c.Amount); err != nil {
			return err
		}
	}
	if c.Description != "" {
		e.Description = c.Description
	}
	if c.Category != "" {
		e.Category = c.Category
	}
	if c.Subcategory != "" {
		e.Subcategory = c.Subcategory
	}
	if c.PaymentMethod != "" {
		e.PaymentMethod = c.PaymentMethod
	}
	if c.Date != "" {
		if e.Date, err = core.ParseDate(c.Date); err != nil {
			return err
		}
	}

	_, outcome, err := s.Service.UpdateExpense(ctx, c.ID, e)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	return nil
}

type ExpenseDeleteCmd struct {
	ID  string `arg:"" help:"Expense id."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ExpenseDeleteCmd) Run(a *App) error {
	ctx := context.Background()
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.Service.Expense(c.ID)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := tui.Confirm(fmt.Sprintf("¿Eliminar el gasto %q de %s (%s)?", e.Description, e.Amount.Display(), e.Date))
		if err != nil || !ok {
			return err
		}
	}
	outcome, err := s.Service.DeleteRecord(ctx, core.KindExpense, c.ID)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	return nil
}
