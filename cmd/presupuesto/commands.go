package main

import (
	"context"
	"fmt"
	"strings"

	"presupuesto/internal/core"
	"presupuesto/internal/services"
	"presupuesto/internal/tui"
)

type Commands struct {
	Serve       ServeCmd       `cmd:"" help:"Serve the web dashboard and JSON API."`
	Income      IncomeCmd      `cmd:"" help:"Manage incomes."`
	Expense     ExpenseCmd     `cmd:"" help:"Manage expenses."`
	Budget      BudgetCmd      `cmd:"" help:"Manage monthly budgets."`
	Report      ReportCmd      `cmd:"" help:"Show totals, budget status and alerts."`
	Months      MonthsCmd      `cmd:"" help:"List the months that have records."`
	DeleteMonth DeleteMonthCmd `cmd:"" name:"delete-month" help:"Delete the records of one month."`
	Reset       ResetCmd       `cmd:"" help:"Delete every record and budget."`
	Taxonomy    TaxonomyCmd    `cmd:"" help:"Show categories, subcategories and payment methods."`
}

type BudgetCmd struct {
	Set  BudgetSetCmd  `cmd:"" help:"Set the budget of a category for a month."`
	Show BudgetShowCmd `cmd:"" help:"Show a month's budget."`
}

type BudgetSetCmd struct {
	Month    string `arg:"" help:"Month (YYYY-MM)."`
	Category string `arg:"" help:"Category name."`
	Amount   string `arg:"" help:"Budgeted amount; zero clears it."`
}

func (c *BudgetSetCmd) Run(a *App) error {
	ctx := context.Background()
	month, err := core.ParseMonthKey(c.Month)
	if err != nil {
		return err
	}
	amount, err := core.ParseMoney(c.Amount)
	if err != nil {
		return err
	}
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	outcome, err := s.Service.SetBudget(ctx, month, c.Category, amount)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	return nil
}

type BudgetShowCmd struct {
	Month string `arg:"" optional:"" help:"Month (YYYY-MM); defaults to the current month."`
}

func (c *BudgetShowCmd) Run(a *App) error {
	month := core.CurrentMonth()
	if c.Month != "" {
		m, err := core.ParseMonthKey(c.Month)
		if err != nil {
			return err
		}
		month = m
	}
	s, err := a.open(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	budget, err := s.Service.Budget(month)
	if err != nil {
		return err
	}
	tui.RenderBudget(a.out, month, s.Taxonomy, budget)
	return nil
}

type ReportCmd struct {
	Month string `help:"Month (YYYY-MM) or 'all'." default:"all"`
}

func (c *ReportCmd) Run(a *App) error {
	filter, err := core.ParseMonthFilter(c.Month)
	if err != nil {
		return err
	}
	s, err := a.open(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	tui.RenderReport(a.out, s.Service.Report(filter))
	return nil
}

type MonthsCmd struct{}

func (c *MonthsCmd) Run(a *App) error {
	s, err := a.open(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	tui.RenderMonths(a.out, s.Service.Months())
	return nil
}

type DeleteMonthCmd struct {
	Month string `arg:"" help:"Month (YYYY-MM)."`
	Kind  string `help:"Which records to delete: all, incomes or expenses." enum:"all,incomes,expenses" default:"all"`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteMonthCmd) Run(a *App) error {
	ctx := context.Background()
	month, err := core.ParseMonthKey(c.Month)
	if err != nil {
		return err
	}
	scope, err := services.ParseDeleteScope(c.Kind)
	if err != nil {
		return err
	}
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	filter := core.MonthFilter(month)
	var parts []string
	if scope != services.ScopeExpenses {
		parts = append(parts, fmt.Sprintf("%d ingresos", len(s.Service.Incomes(filter))))
	}
	if scope != services.ScopeIncomes {
		parts = append(parts, fmt.Sprintf("%d gastos", len(s.Service.Expenses(filter))))
	}

	confirmed := c.Yes
	if !confirmed {
		confirmed, err = tui.Confirm(fmt.Sprintf("¿Eliminar %s de %s?", strings.Join(parts, " y "), month))
		if err != nil {
			return err
		}
		if !confirmed {
			tui.PrintInfof(a.out, "Eliminación cancelada.")
			return nil
		}
	}

	_, outcome, err := s.Service.DeleteMonth(ctx, month, scope, confirmed)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	return nil
}

type ResetCmd struct {
	Confirm string `help:"The confirmation phrase; asked for when omitted."`
}

func (c *ResetCmd) Run(a *App) error {
	ctx := context.Background()
	phrase := c.Confirm
	if phrase == "" {
		typed, err := tui.PromptConfirmation(services.ResetConfirmation)
		if err != nil {
			return err
		}
		phrase = typed
	}
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	outcome, err := s.Service.Reset(ctx, phrase)
	if err != nil {
		return err
	}
	tui.PrintSuccess(a.out, outcome.Message)
	return nil
}

type TaxonomyCmd struct{}

func (c *TaxonomyCmd) Run(a *App) error {
	tax, err := core.LoadTaxonomy(a.cfg.TaxonomyFile)
	if err != nil {
		return err
	}
	tui.RenderTaxonomy(a.out, tax)
	return nil
}
