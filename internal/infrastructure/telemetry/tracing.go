package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for service spans
const TracerName = "finance-backend"

// Span attribute keys used by the finance services
const (
	SpanAttrTenantID      = "tenant_id"
	SpanAttrCustomerID    = "customer_id"
	SpanAttrInvoiceID     = "invoice_id"
	SpanAttrPaymentID     = "payment_id"
	SpanAttrEntryID       = "journal_entry_id"
	SpanAttrAmount        = "amount"
	SpanAttrPaymentMethod = "payment_method"
	SpanAttrAllocations   = "allocations"
)

// StartServiceSpan starts a span named {service}.{method}. Callers must End it.
// While a profiler runs, the goroutine also carries operation and tenant_id
// pprof labels until the span ends.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, keyValues ...any) (context.Context, trace.Span) {
	operation := fmt.Sprintf("%s.%s", service, method)
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	spanCtx, span := tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(toAttributes(keyValues)...),
	)
	return labelSpan(ctx, spanCtx, span, operation, tenantFrom(keyValues))
}

func tenantFrom(keyValues []any) string {
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok && key == SpanAttrTenantID {
			return fmt.Sprintf("%v", keyValues[i+1])
		}
	}
	return ""
}

// SetAttributes adds key/value pairs to span. Non-string keys are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	span.SetAttributes(toAttributes(keyValues)...)
}

// RecordError marks the span failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace id in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

func toAttributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
