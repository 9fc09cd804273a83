package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/authgate/observability"
)

// Telemetry opens a server span per request and records request metrics
// labelled by the matched route pattern. A nil metrics skips the counters.
func Telemetry(metrics *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanHTTPRequest,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(observability.AttrMethod, c.Request.Method),
				attribute.String(observability.AttrRoute, route),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		if metrics != nil {
			metrics.RecordRequestStart(ctx)
		}
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int(observability.AttrStatus, status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
		if metrics != nil {
			metrics.RecordRequestEnd(ctx, c.Request.Method, route, status, time.Since(start))
		}
	}
}
