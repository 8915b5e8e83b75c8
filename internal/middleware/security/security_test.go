package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct", "203.0.113.7:5000", "", "", "203.0.113.7"},
		{"untrusted peer ignores xff", "203.0.113.7:5000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted proxy xff", "10.0.0.2:5000", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted proxy x-real-ip", "127.0.0.1:5000", "", "198.51.100.9", "198.51.100.9"},
		{"trusted proxy bad xff", "192.168.1.1:80", "garbage", "", "192.168.1.1"},
		{"no port", "203.0.113.7", "", "", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"normal", http.MethodGet, "/api/report?month=2025-03", "Mozilla/5.0", false},
		{"traversal", http.MethodGet, "/static/../../etc/passwd", "", true},
		{"dotenv", http.MethodGet, "/.env", "", true},
		{"script in query", http.MethodGet, "/api/incomes?q=javascript:alert(1)", "", true},
		{"scanner", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace", "TRACE", "/", "", true},
		{"long url", http.MethodGet, "/?q=" + strings.Repeat("a", 2100), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v (reason %q)", got, tt.want, d.Reason(r))
			}
		})
	}

	if got := d.GetMetrics().SuspiciousRequests; got != 6 {
		t.Errorf("SuspiciousRequests = %d, want 6", got)
	}
}

func TestDetectorMiddleware(t *testing.T) {
	d := NewDetector()
	h := d.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("TRACE", "/", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE status = %d, want 405", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("suspicious GET should only be logged, status = %d", rr.Code)
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:1234"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := d.ExtractClientIP(r); got != "198.51.100.1" {
		t.Errorf("ExtractClientIP() = %q", got)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		path        string
		tls         bool
		wantNoStore bool
		wantHSTS    bool
	}{
		{"/", false, false, false},
		{"/api/report", false, true, false},
		{"/ui/report", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, r)

			if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing X-Content-Type-Options")
			}
			if rr.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("missing X-Frame-Options")
			}
			if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "default-src 'self'") {
				t.Error("missing CSP")
			}
			if got := rr.Header().Get("Cache-Control") == "no-store"; got != tt.wantNoStore {
				t.Errorf("no-store = %v, want %v", got, tt.wantNoStore)
			}
			if got := rr.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}

func TestStaticAssetMiddleware(t *testing.T) {
	rr := httptest.NewRecorder()
	StaticAssetMiddleware(3600)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rr.Header().Get("Cache-Control") != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}
