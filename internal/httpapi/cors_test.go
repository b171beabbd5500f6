package httpapi

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"cafe-receipt-bridge/internal/config"
	"cafe-receipt-bridge/internal/logging"
)

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := logging.New(path, true)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(func() {
		logger.Close()
	})
	return logger
}

func corsHandler(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Config{}
	config.ApplyDefaults(&cfg)
	if mutate != nil {
		mutate(&cfg)
	}
	logger := newTestLogger(t)
	policy := newCORSPolicy(&cfg, logger)

	return corsMiddleware(logger, func() *corsPolicy { return policy })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSOrigins(t *testing.T) {
	tests := []struct {
		name     string
		origins  string
		patterns string
		origin   string
		wantACAO string
	}{
		{name: "explicit origin", origins: "https://allowed.example", origin: "https://allowed.example", wantACAO: "https://allowed.example"},
		{name: "trailing slash in config", origins: "https://allowed.example/", origin: "https://allowed.example", wantACAO: "https://allowed.example"},
		{name: "default dev origin", origin: "http://localhost:5173", wantACAO: "http://localhost:5173"},
		{
			name:     "wildcard pattern",
			patterns: "https://integrated-pos-web-pr-*.onrender.com",
			origin:   "https://integrated-pos-web-pr-131.onrender.com",
			wantACAO: "https://integrated-pos-web-pr-131.onrender.com",
		},
		{name: "regexp pattern", patterns: `^https://till-\d+\.cafe\.local$`, origin: "https://till-2.cafe.local", wantACAO: "https://till-2.cafe.local"},
		{name: "broken pattern is skipped", patterns: "https://(unclosed", origin: "https://(unclosed"},
		{name: "disallowed origin", origin: "https://not-allowed.example"},
		{name: "no origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := corsHandler(t, func(cfg *config.Config) {
				if tt.origins != "" {
					cfg.CORS.AllowOrigins = tt.origins
				}
				cfg.CORS.AllowOriginPatterns = tt.patterns
			})

			req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1/health", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200 got %d", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantACAO {
				t.Fatalf("expected ACAO %q, got %q", tt.wantACAO, got)
			}
		})
	}
}

func TestCORSPreflightOptions(t *testing.T) {
	handler := corsHandler(t, func(cfg *config.Config) {
		cfg.CORS.AllowOrigins = "https://allowed.example"
	})

	req := httptest.NewRequest(http.MethodOptions, "http://127.0.0.1/receipts/invoice", nil)
	req.Header.Set("Origin", "https://allowed.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type,x-api-key")
	req.Header.Set("Access-Control-Request-Private-Network", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatalf("expected Allow-Methods header")
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatalf("expected Allow-Headers header")
	}
	if got := rec.Header().Get("Access-Control-Allow-Private-Network"); got != "true" {
		t.Fatalf("expected Allow-Private-Network header, got %q", got)
	}
}
