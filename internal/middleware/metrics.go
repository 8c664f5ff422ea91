package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records request metrics. *telemetry.Telemetry implements it.
type HTTPObserver interface {
	IncInFlight()
	DecInFlight()
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// unmatchedRoute labels requests that hit no registered route, keeping
// arbitrary paths out of the label set.
const unmatchedRoute = "unmatched"

// Metrics returns a gin middleware that reports every request to obs,
// labelled by the matched route template rather than the raw path.
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		obs.IncInFlight()
		start := time.Now()
		defer obs.DecInFlight()

		c.Next()

		obs.ObserveHTTPRequest(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
