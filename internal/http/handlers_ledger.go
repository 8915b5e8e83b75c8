package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"presupuesto/internal/core"
	"presupuesto/internal/services"
)

// handleDeleteMonth removes a month's records. The scope comes from "kind"
// (or "scope") and the request must carry confirm=true.
func (s *Server) handleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	rawScope := q.Get("kind")
	if rawScope == "" {
		rawScope = q.Get("scope")
	}
	scope, err := services.ParseDeleteScope(rawScope)
	if err != nil {
		writeError(w, r, err)
		return
	}

	counts, outcome, err := s.ledger.DeleteMonth(r.Context(), month, scope, ParseConfirm(q.Get("confirm")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusOK, outcome, map[string]any{"deleted": counts}, month).Write(w)
}

// handleReset wipes the whole ledger after the typed confirmation phrase.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	outcome, err := s.ledger.Reset(r.Context(), p.Get(keyConfirmation...))
	if err != nil {
		writeError(w, r, err)
		return
	}
	mutationResponse(http.StatusOK, outcome, nil).Write(w)
}
