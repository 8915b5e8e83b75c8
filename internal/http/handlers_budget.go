package http

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"presupuesto/internal/core"
	"presupuesto/internal/report"
)

func (s *Server) budgetBody(month core.MonthKey, budget map[string]core.Money) map[string]any {
	return map[string]any{
		"month":  month,
		"budget": budget,
		"total":  report.BudgetTotal(s.ledger.Taxonomy(), budget),
	}
}

// handleGetBudget returns the month's budget with every category present.
// Reading never creates the month.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	budget, err := s.ledger.Budget(month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewHTMXResponse().JSON(s.budgetBody(month, budget)).Write(w)
}

// handleEnsureBudget creates the month with every category at zero.
func (s *Server) handleEnsureBudget(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	budget, err := s.ledger.EnsureBudgetMonth(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewHTMXResponse().JSON(s.budgetBody(month, budget)).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		BadRequestError("Categoría no válida").Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := core.ParseMoney(p.Get(keyAmount...))
	if err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := s.ledger.SetBudget(r.Context(), month, sanitizeInput(category), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	budget, err := s.ledger.Budget(month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusOK, outcome, s.budgetBody(month, budget), month).Write(w)
}
