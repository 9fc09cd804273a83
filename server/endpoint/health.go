package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/component"
	"github.com/kbukum/authgate/observability"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Healthz is the liveness probe; it always answers {"status":"ok"}.
func Healthz() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Health reports service health including component statuses. A component
// that is down turns the response into a 503.
func Health(serviceName, version string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}
		sh := observability.Aggregate(serviceName, version, components)

		httpStatus := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":     sh.Status,
			"service":    sh.Service,
			"version":    sh.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": sh.Components,
		})
	}
}
