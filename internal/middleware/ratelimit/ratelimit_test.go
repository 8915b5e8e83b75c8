package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowBurst(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request within the minute should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients keep their own budget")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1", m.TotalHits)
	}
	if m.ClientCount != 2 {
		t.Errorf("ClientCount = %d, want 2", m.ClientCount)
	}
}

func TestLimiter_Defaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	if rl.burst != 60 {
		t.Errorf("burst = %d, want 60", rl.burst)
	}
	if rl.idleTTL != 10*time.Minute {
		t.Errorf("idleTTL = %v", rl.idleTTL)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 10, IdleTTL: time.Minute})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.cleanupStaleEntries(time.Now())
	if rl.ActiveClients() != 1 {
		t.Fatalf("recent client removed")
	}
	rl.cleanupStaleEntries(time.Now().Add(2 * time.Minute))
	if rl.ActiveClients() != 0 {
		t.Errorf("idle client kept, ActiveClients = %d", rl.ActiveClients())
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	handler := rl.Middleware(
		func(r *http.Request) string { return "client" },
		ReadOnly,
		nil,
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodDelete, http.StatusTooManyRequests},
	}
	for i, tt := range tests {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/incomes", nil))
		if rr.Code != tt.want {
			t.Errorf("request %d (%s): status = %d, want %d", i+1, tt.method, rr.Code, tt.want)
		}
		if rr.Code == http.StatusTooManyRequests && rr.Header().Get("Retry-After") == "" {
			t.Error("Retry-After header missing")
		}
	}
}

func TestReadOnly(t *testing.T) {
	for method, want := range map[string]bool{
		http.MethodGet:     true,
		http.MethodHead:    true,
		http.MethodOptions: true,
		http.MethodPost:    false,
		http.MethodPut:     false,
		http.MethodDelete:  false,
	} {
		if got := ReadOnly(httptest.NewRequest(method, "/", nil)); got != want {
			t.Errorf("ReadOnly(%s) = %v, want %v", method, got, want)
		}
	}
}
