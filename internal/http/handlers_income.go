package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"presupuesto/internal/core"
)

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseMonthFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewHTMXResponse().JSON(map[string]any{
		"month":   filter,
		"incomes": s.ledger.Incomes(filter),
	}).Write(w)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	in, err := s.ledger.Income(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewHTMXResponse().JSON(map[string]any{"income": in}).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := parseIncome(p, core.Income{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, outcome, err := s.ledger.AddIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusCreated, outcome, map[string]any{"income": created}, created.Date.MonthKey()).
		TriggerFormReset().
		Write(w)
}

// handleUpdateIncome overlays the fields present in the body onto the stored
// income.
func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := s.ledger.Income(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := parseIncome(p, current)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, outcome, err := s.ledger.UpdateIncome(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusOK, outcome, map[string]any{"income": updated},
		current.Date.MonthKey(), updated.Date.MonthKey()).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := s.ledger.Income(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	outcome, err := s.ledger.DeleteRecord(r.Context(), core.KindIncome, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusOK, outcome, nil, current.Date.MonthKey()).Write(w)
}
