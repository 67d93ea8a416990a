// Package middleware provides the HTTP middleware of the finance API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps otelgin. Spans are named after the route pattern.
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(serviceName)
}

// SpanEnricher adds request, tenant and user attributes to the server span
// and marks it failed for 5xx responses. Place it after TenantMiddleware.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := c.GetString(RequestIDKey); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if id := GetTenantID(c); id != uuid.Nil {
			span.SetAttributes(attribute.String("tenant_id", id.String()))
		}
		if id := GetUserID(c); id != uuid.Nil {
			span.SetAttributes(attribute.String("user_id", id.String()))
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
