package middleware

import (
	"time"

	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTP metric attribute keys
var (
	attrHTTPMethod = attribute.Key("http.method")
	attrHTTPRoute  = attribute.Key("http.route")
	attrHTTPStatus = attribute.Key("http.status_code")
)

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type httpMetrics struct {
	requests *telemetry.Counter
	duration *telemetry.Histogram
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requests, err := telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  httpDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &httpMetrics{requests: requests, duration: duration}, nil
}

// HTTPMetrics counts requests by route, method, status and tenant and records
// their latency. Unmatched routes are reported as "unknown" to keep the
// label set bounded.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		base := []attribute.KeyValue{
			attrHTTPMethod.String(c.Request.Method),
			attrHTTPRoute.String(route),
		}
		m.duration.Record(c.Request.Context(), time.Since(start).Seconds(), base...)

		attrs := append(base, attrHTTPStatus.Int(c.Writer.Status()))
		if tenant := GetTenantID(c); tenant != uuid.Nil {
			attrs = append(attrs, telemetry.AttrTenantID.String(tenant.String()))
		}
		m.requests.Inc(c.Request.Context(), attrs...)
	}, nil
}
