// Package telemetry holds the process observability context: a private
// Prometheus registry, the HTTP/store/catalog metrics recorded against it, and
// an optional periodic push to a Pushgateway.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/simp-lee/catalog/internal/config"
	"github.com/simp-lee/catalog/internal/domain"
)

// Store operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Telemetry is the observability context. It is constructed once at startup
// and passed to whatever records metrics; there is no package-level state.
type Telemetry struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
	storeOperations *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	productsCreated prometheus.Counter
	productsDeleted prometheus.Counter

	pusher       *push.Pusher
	stop         chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
}

// New builds the registry and metrics described by cfg. When cfg.PushURL is
// set a background loop pushes the registry every cfg.PushEvery().
func New(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		logger:   logger.With(slog.String("component", "telemetry")),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		storeOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "store_operations_total",
			Help:      "Total number of product store operations by outcome.",
		}, []string{"operation", "outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of product store operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		productsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "catalog_products_created_total",
			Help:      "Total number of products created.",
		}),
		productsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "catalog_products_deleted_total",
			Help:      "Total number of products deleted.",
		}),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}),
		t.httpRequests,
		t.httpDuration,
		t.httpInFlight,
		t.storeOperations,
		t.storeDuration,
		t.productsCreated,
		t.productsDeleted,
	}
	for _, c := range cs {
		if err := t.registry.Register(c); err != nil {
			return nil, err
		}
	}

	if cfg.PushURL != "" {
		interval := cfg.PushEvery()
		if interval <= 0 {
			return nil, errors.New("telemetry push interval must be positive")
		}
		t.pusher = push.New(cfg.PushURL, cfg.ServiceName).
			Gatherer(t.registry).
			Grouping("environment", cfg.Environment)
		t.stop = make(chan struct{})
		t.done = make(chan struct{})
		go t.pushLoop(interval)
	}

	return t, nil
}

// Registry exposes the underlying registry, mainly for tests and extra collectors.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{Registry: t.registry})
}

// IncInFlight marks the start of an HTTP request.
func (t *Telemetry) IncInFlight() {
	t.httpInFlight.Inc()
}

// DecInFlight marks the end of an HTTP request.
func (t *Telemetry) DecInFlight() {
	t.httpInFlight.Dec()
}

// ObserveHTTPRequest records one completed HTTP request.
func (t *Telemetry) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	t.httpRequests.WithLabelValues(method, route, code).Inc()
	t.httpDuration.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
}

// ObserveStoreOperation records one store call. A not-found error is its own
// outcome so that deletes of missing ids do not read as failures.
func (t *Telemetry) ObserveStoreOperation(operation string, err error, elapsed time.Duration) {
	t.storeOperations.WithLabelValues(operation, outcome(err)).Inc()
	t.storeDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ProductCreated counts a successful create.
func (t *Telemetry) ProductCreated() {
	t.productsCreated.Inc()
}

// ProductDeleted counts a successful delete.
func (t *Telemetry) ProductDeleted() {
	t.productsDeleted.Inc()
}

// Shutdown stops the push loop and pushes the registry one last time.
// It is safe to call more than once; later calls return the first result.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		if t.pusher == nil {
			return
		}
		close(t.stop)
		select {
		case <-t.done:
		case <-ctx.Done():
			t.shutdownErr = ctx.Err()
			return
		}
		if err := t.pusher.PushContext(ctx); err != nil {
			t.shutdownErr = err
			t.logger.Warn("final metrics push failed", slog.String("error", err.Error()))
		}
	})
	return t.shutdownErr
}

func (t *Telemetry) pushLoop(interval time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if err := t.pusher.PushContext(ctx); err != nil {
				t.logger.Warn("metrics push failed", slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case domain.IsNotFound(err):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
