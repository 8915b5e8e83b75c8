package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/report"
)

// sanitizeInput removes control characters (except tab, newline and carriage
// return) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// writeError maps service errors onto status codes. Validation messages are
// shown to the user; anything else gets a generic message and is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		UnprocessableEntityError(err.Error()).Write(w)
	case core.IsNotFound(err):
		NotFoundError("Registro no encontrado").Write(w)
	case core.IsStorageUnavailable(err):
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Storage unavailable", log.FieldError, err, log.FieldPath, r.URL.Path)
		ServiceUnavailableError("Almacenamiento no disponible, intente de nuevo").Write(w)
	case errors.Is(err, errBadBody):
		BadRequestError("Formato de solicitud no válido").Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
		InternalServerError("Error interno").Write(w)
	}
}

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.Display() },
	"pct":   func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"rate": func(p *float64) string {
		if p == nil {
			return "N/A"
		}
		return fmt.Sprintf("%.2f%%", *p)
	},
	"status":   report.Status.Label,
	"negative": func(m core.Money) bool { return m.Cents < 0 },
	// bar clamps a percentage into a CSS width.
	"bar": func(f float64) int {
		switch {
		case f <= 0:
			return 0
		case f < 2:
			return 2
		case f > 100:
			return 100
		}
		return int(f + 0.5)
	},
}
