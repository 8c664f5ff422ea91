package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupCORSRouter(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/api/products", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.DELETE("/api/products/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func corsRequest(r http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_DefaultConfig_SetsHeaders(t *testing.T) {
	w := corsRequest(setupCORSRouter(DefaultCORSConfig()), http.MethodGet, "http://localhost:3000")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	wantHeaders := map[string]string{
		"Access-Control-Allow-Origin":   "*",
		"Access-Control-Allow-Methods":  "GET, POST, DELETE, OPTIONS",
		"Access-Control-Expose-Headers": RequestIDHeader,
		"Access-Control-Max-Age":        "86400",
		"Vary":                          "Origin",
	}
	for k, want := range wantHeaders {
		if got := w.Header().Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("unexpected Allow-Credentials %q", got)
	}
}

func TestCORS_Preflight_Returns204(t *testing.T) {
	w := corsRequest(setupCORSRouter(DefaultCORSConfig()), http.MethodOptions, "http://localhost:3000")

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
}

func TestCORS_NoOriginHeader_SkipsCORSHeaders(t *testing.T) {
	w := corsRequest(setupCORSRouter(DefaultCORSConfig()), http.MethodGet, "")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Allow-Origin, got %q", got)
	}
}

func TestCORS_Allowlist(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example.com", "https://admin.example.com"}

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"first allowed", "https://shop.example.com", "https://shop.example.com"},
		{"second allowed", "https://admin.example.com", "https://admin.example.com"},
		{"denied", "https://evil.example.com", ""},
	}

	r := setupCORSRouter(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := corsRequest(r, http.MethodGet, tt.origin)
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
		})
	}
}

func TestCORS_EmptyAllowlist_DeniesEverything(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = nil

	w := corsRequest(setupCORSRouter(cfg), http.MethodOptions, "http://localhost:3000")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Allow-Origin, got %q", got)
	}
	// Denied preflights fall through to routing; no OPTIONS route exists.
	if w.Code == http.StatusNoContent {
		t.Error("denied preflight should not be answered with 204")
	}
}

func TestCORS_WithCredentials_EchoesOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowCredentials = true

	w := corsRequest(setupCORSRouter(cfg), http.MethodGet, "http://localhost:3000")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected origin echo, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected Allow-Credentials true, got %q", got)
	}
}

func TestCORS_MaxAge(t *testing.T) {
	tests := []struct {
		name   string
		maxAge time.Duration
		want   string
	}{
		{"one hour", time.Hour, "3600"},
		{"zero omits header", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.MaxAge = tt.maxAge
			w := corsRequest(setupCORSRouter(cfg), http.MethodGet, "http://localhost:3000")
			if got := w.Header().Get("Access-Control-Max-Age"); got != tt.want {
				t.Errorf("Max-Age = %q, want %q", got, tt.want)
			}
		})
	}
}
