package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := installRecorder(t)
	id := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "payment", "record", SpanAttrPaymentID, id, "ignored")
	SetAttributes(span, SpanAttrAmount, "10.00", 42, "bad key")
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "payment.record", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String(SpanAttrPaymentID, id.String()))
	assert.Contains(t, spans[0].Attributes(), attribute.String(SpanAttrAmount, "10.00"))
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tp, err := NewTracerProvider(ctx, Config{Enabled: false}, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Same(t, logger, Bridge(logger, "svc", lp, 0))
	assert.NoError(t, lp.Shutdown(ctx))
}
