package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"presupuesto/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseMonthFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewHTMXResponse().JSON(map[string]any{
		"month":    filter,
		"expenses": s.ledger.Expenses(filter),
	}).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.ledger.Expense(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewHTMXResponse().JSON(map[string]any{"expense": e}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := parseExpense(p, core.Expense{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, outcome, err := s.ledger.AddExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusCreated, outcome, map[string]any{"expense": created}, created.Date.MonthKey()).
		TriggerFormReset().
		Write(w)
}

// handleUpdateExpense overlays the fields present in the body onto the stored
// expense.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := s.ledger.Expense(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := parseExpense(p, current)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, outcome, err := s.ledger.UpdateExpense(r.Context(), id, e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusOK, outcome, map[string]any{"expense": updated},
		current.Date.MonthKey(), updated.Date.MonthKey()).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := s.ledger.Expense(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	outcome, err := s.ledger.DeleteRecord(r.Context(), core.KindExpense, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusOK, outcome, nil, current.Date.MonthKey()).Write(w)
}
