package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggerAddsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf, Component: ComponentStorage})

	l.WithComponent(ComponentLedger).Info("saved", FieldRecordID, "abc")

	out := buf.String()
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("expected a single component attribute, got %q", out)
	}
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "record_id=abc") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	l := Discard()
	var got *Logger
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got == nil || got.Component() != ComponentApp {
		t.Fatalf("expected request logger in context, got %+v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	r := httptest.NewRequest(http.MethodPost, "/api/incomes", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusUnprocessableEntity, 3, "127.0.0.1")
	sl.LogError(context.Background(), "boom", errors.New("disk full"), OpCreate, nil)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status_code=422") {
		t.Fatalf("expected warn record for 422, got %q", out)
	}
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, `error="disk full"`) {
		t.Fatalf("expected error record, got %q", out)
	}
}
