package http

import (
	"context"
	"net/http"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/report"
	"presupuesto/internal/services"
)

// reportView is the data of the report partial.
type reportView struct {
	report.Report
	Selected string
}

type indexView struct {
	Taxonomy          core.Taxonomy
	Months            []core.MonthKey
	Selected          string
	Today             string
	CurrentMonth      string
	ResetConfirmation string
	Report            reportView
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	filter, err := ParseMonthFilter(r.URL.Query())
	if err != nil {
		filter = core.MonthFilter(core.AllMonths)
	}
	data := indexView{
		Taxonomy:          s.ledger.Taxonomy(),
		Months:            s.ledger.Months(),
		Selected:          string(filter),
		Today:             core.Today().String(),
		CurrentMonth:      string(core.CurrentMonth()),
		ResetConfirmation: services.ResetConfirmation,
		Report:            reportView{Report: s.ledger.Report(filter), Selected: string(filter)},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, "template", "index.html")
	}
}

// handleReportPartial renders the report panel for the htmx dashboard.
func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseMonthFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view := reportView{Report: s.ledger.Report(filter), Selected: string(filter)}
	if err := s.templates.ExecuteTemplate(w, "report", view); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", "report", log.FieldMonth, filter)
	}
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(s.ledger.Taxonomy()).Write(w)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	months := s.ledger.Months()
	if months == nil {
		months = []core.MonthKey{}
	}
	NewHTMXResponse().JSON(map[string]any{"months": months}).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseMonthFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewHTMXResponse().JSON(s.ledger.Report(filter)).Write(w)
}

// mutationResponse is the common success response of every change: the
// outcome message as a notification plus a refresh trigger for months.
func mutationResponse(status int, outcome services.Outcome, body map[string]any, months ...core.MonthKey) *HTMXResponseBuilder {
	if body == nil {
		body = map[string]any{}
	}
	body["outcome"] = outcome
	keys := make([]string, 0, len(months))
	for _, m := range months {
		if m == "" {
			continue
		}
		dup := false
		for _, k := range keys {
			if k == string(m) {
				dup = true
				break
			}
		}
		if !dup {
			keys = append(keys, string(m))
		}
	}
	return NewHTMXResponse().
		Status(status).
		TriggerLedgerChanged(outcome.Action, keys...).
		TriggerSuccessNotification(outcome.Message).
		JSON(body)
}
