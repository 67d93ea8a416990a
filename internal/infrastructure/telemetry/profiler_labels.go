package telemetry

import (
	"context"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
	"go.opentelemetry.io/otel/trace"
)

// Profiling label keys
const (
	ProfilingLabelTenantID  = "tenant_id"
	ProfilingLabelOperation = "operation"
)

// MaxLabelValueLength caps label values to keep series small
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped from profiles. Tenants are kept; a
// deployment with thousands of them should turn profiling off instead.
var highCardinalityLabels = map[string]bool{
	"user_id":    true,
	"request_id": true,
	"payment_id": true,
	"invoice_id": true,
	"trace_id":   true,
	"span_id":    true,
}

// WithProfilingLabels runs fn with labels attached to its CPU samples.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 || !ProfilingActive() {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// OperationLabels labels one service operation of a tenant.
func OperationLabels(operation, tenantID string) map[string]string {
	return map[string]string{
		ProfilingLabelOperation: operation,
		ProfilingLabelTenantID:  tenantID,
	}
}

// labeledSpan restores the caller's goroutine labels when the span ends,
// the same way pprof.Do does when its function returns.
type labeledSpan struct {
	trace.Span
	parent context.Context
}

func (s labeledSpan) End(options ...trace.SpanEndOption) {
	pprof.SetGoroutineLabels(s.parent)
	s.Span.End(options...)
}

// labelSpan tags the current goroutine with operation and tenant until span
// ends. parent is the context the span was started from.
func labelSpan(parent, ctx context.Context, span trace.Span, operation, tenantID string) (context.Context, trace.Span) {
	if !ProfilingActive() {
		return ctx, span
	}
	pairs := sanitizeLabels(OperationLabels(operation, tenantID))
	if len(pairs) == 0 {
		return ctx, span
	}
	ctx = pprof.WithLabels(ctx, pprof.Labels(pairs...))
	pprof.SetGoroutineLabels(ctx)
	return ctx, labeledSpan{Span: span, parent: parent}
}

// sanitizeLabels returns sorted key/value pairs with empty, oversized and
// high cardinality entries removed.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if value == "" || highCardinalityLabels[key] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		k := sanitizeLabelKey(key)
		if k == "" {
			continue
		}
		pairs = append(pairs, k, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			out = append(out, c)
		}
	}
	return string(out)
}
