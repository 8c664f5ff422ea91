package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/simp-lee/catalog/internal/config"
	"github.com/simp-lee/catalog/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestTelemetry(t *testing.T, cfg config.TelemetryConfig) *Telemetry {
	t.Helper()
	tel, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel
}

func TestObserveHTTPRequest(t *testing.T) {
	tel := newTestTelemetry(t, config.TelemetryConfig{ServiceName: "product-service"})

	tel.ObserveHTTPRequest(http.MethodGet, "/api/products", http.StatusOK, 20*time.Millisecond)
	tel.ObserveHTTPRequest(http.MethodGet, "/api/products", http.StatusOK, 30*time.Millisecond)
	tel.ObserveHTTPRequest(http.MethodDelete, "/api/products/:id", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(tel.httpRequests.WithLabelValues("GET", "/api/products", "200")); got != 2 {
		t.Errorf("GET 200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(tel.httpRequests.WithLabelValues("DELETE", "/api/products/:id", "404")); got != 1 {
		t.Errorf("DELETE 404 count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(tel.httpDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestInFlight(t *testing.T) {
	tel := newTestTelemetry(t, config.TelemetryConfig{})

	tel.IncInFlight()
	tel.IncInFlight()
	tel.DecInFlight()

	if got := testutil.ToFloat64(tel.httpInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}

func TestObserveStoreOperation_Outcomes(t *testing.T) {
	tel := newTestTelemetry(t, config.TelemetryConfig{})

	tel.ObserveStoreOperation("find", nil, time.Millisecond)
	tel.ObserveStoreOperation("delete", domain.ErrProductNotFound, time.Millisecond)
	tel.ObserveStoreOperation("insert", domain.NewAppError(domain.CodeInternal, "database error", errors.New("disk full")), time.Millisecond)
	tel.ObserveStoreOperation("insert", errors.New("boom"), time.Millisecond)

	tests := []struct {
		operation string
		outcome   string
		want      float64
	}{
		{"find", OutcomeOK, 1},
		{"delete", OutcomeNotFound, 1},
		{"insert", OutcomeError, 2},
		{"insert", OutcomeOK, 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(tel.storeOperations.WithLabelValues(tt.operation, tt.outcome))
		if got != tt.want {
			t.Errorf("store_operations_total{%s,%s} = %v, want %v", tt.operation, tt.outcome, got, tt.want)
		}
	}
}

func TestCatalogCounters(t *testing.T) {
	tel := newTestTelemetry(t, config.TelemetryConfig{})

	tel.ProductCreated()
	tel.ProductCreated()
	tel.ProductDeleted()

	if got := testutil.ToFloat64(tel.productsCreated); got != 2 {
		t.Errorf("created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(tel.productsDeleted); got != 1 {
		t.Errorf("deleted = %v, want 1", got)
	}
}

func TestHandler_ExposesNamespacedMetrics(t *testing.T) {
	tel := newTestTelemetry(t, config.TelemetryConfig{Namespace: "catalog"})
	tel.ProductCreated()

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"catalog_catalog_products_created_total 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two contexts in one process must not collide on registration.
	a := newTestTelemetry(t, config.TelemetryConfig{})
	b := newTestTelemetry(t, config.TelemetryConfig{})

	a.ProductCreated()

	if got := testutil.ToFloat64(b.productsCreated); got != 0 {
		t.Errorf("second context saw %v creates, want 0", got)
	}
}

type pushRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (p *pushRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	p.mu.Lock()
	p.paths = append(p.paths, r.Method+" "+r.URL.Path)
	p.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func (p *pushRecorder) requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func TestShutdown_FinalPush(t *testing.T) {
	rec := &pushRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	tel, err := New(config.TelemetryConfig{
		ServiceName:  "product-service",
		Environment:  "test",
		PushURL:      srv.URL,
		PushInterval: "1h",
	}, discardLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() error: %v", err)
	}

	got := rec.requests()
	if len(got) != 1 {
		t.Fatalf("push requests = %v, want exactly one final push", got)
	}
	want := "PUT /metrics/job/product-service/environment/test"
	if got[0] != want {
		t.Errorf("push request = %q, want %q", got[0], want)
	}
}

func TestPushLoop_PushesPeriodically(t *testing.T) {
	rec := &pushRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	tel := newTestTelemetry(t, config.TelemetryConfig{
		ServiceName:  "product-service",
		Environment:  "test",
		PushURL:      srv.URL,
		PushInterval: "10ms",
	})

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.requests()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(rec.requests()); n < 2 {
		t.Fatalf("push requests = %d, want at least 2", n)
	}
	_ = tel
}

func TestNew_PushRequiresInterval(t *testing.T) {
	_, err := New(config.TelemetryConfig{ServiceName: "svc", PushURL: "http://localhost:9091"}, discardLogger())
	if err == nil {
		t.Fatal("expected error for push_url without push_interval")
	}
}

func TestShutdown_WithoutPush(t *testing.T) {
	tel := newTestTelemetry(t, config.TelemetryConfig{})
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
}
