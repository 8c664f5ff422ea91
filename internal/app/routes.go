package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/catalog/internal/pkg"
)

const healthCheckTimeout = time.Second

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	// Database is pinged by /health. Nil means there is no external
	// database (memory driver) and the component always reports ok.
	Database HealthCheck
	// MetricsPath and Metrics expose the telemetry registry. Both are
	// optional; nothing is mounted when Metrics is nil.
	MetricsPath string
	Metrics     http.Handler
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.Database))

	if deps.Metrics != nil {
		if deps.MetricsPath == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
		r.GET(deps.MetricsPath, gin.WrapH(deps.Metrics))
	}

	api := r.Group("/api")
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		pkg.Message(c, http.StatusNotFound, "not found")
	})

	return nil
}

// healthHandler answers 200 {"status":"healthy"} when the database responds
// and 503 {"status":"degraded"} otherwise.
func healthHandler(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "healthy"
		code := http.StatusOK

		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				dbStatus = "error"
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}
