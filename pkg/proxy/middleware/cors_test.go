package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lexiclaire/gateway/pkg/config"
)

func TestCORSMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	t.Run("adds CORS headers for allowed origin", func(t *testing.T) {
		cfg := &config.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			ExposedHeaders: []string{"X-Request-ID"},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q, want https://example.com", got)
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
			t.Errorf("Access-Control-Expose-Headers = %q, want X-Request-ID", got)
		}
		if got := w.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("handles preflight request", func(t *testing.T) {
		cfg := &config.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			MaxAge:         3600,
		}

		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()

		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
			t.Errorf("Access-Control-Allow-Methods = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Request-ID" {
			t.Errorf("Access-Control-Allow-Headers = %q", got)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("Access-Control-Max-Age = %q, want 3600", got)
		}
		if w.Body.Len() != 0 {
			t.Errorf("preflight body = %q, want empty", w.Body.String())
		}
	})

	t.Run("plain OPTIONS reaches handler", func(t *testing.T) {
		cfg := &config.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}}

		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		w := httptest.NewRecorder()

		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("blocks disallowed origin", func(t *testing.T) {
		cfg := &config.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
		}

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.com")
		w := httptest.NewRecorder()

		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("skips CORS when disabled", func(t *testing.T) {
		cfg := &config.CORSConfig{Enabled: false, AllowedOrigins: []string{"*"}}

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("sets credentials header when enabled", func(t *testing.T) {
		cfg := &config.CORSConfig{
			Enabled:          true,
			AllowedOrigins:   []string{"https://example.com"},
			AllowCredentials: true,
		}

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Access-Control-Allow-Credentials should be set")
		}
	})

	t.Run("defaults allow the front end", func(t *testing.T) {
		cfg := &config.Config{}
		config.ApplyDefaults(cfg)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		CORSMiddleware(&cfg.Server.CORS)(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
			t.Error("default CORS config should allow any origin")
		}
	})
}
