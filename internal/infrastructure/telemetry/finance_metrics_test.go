package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestFinanceMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	fm, err := NewFinanceMetrics(provider.Meter(FinanceMeterName))
	require.NoError(t, err)

	ctx := context.Background()
	tenant := uuid.New()
	fm.RecordPayment(ctx, tenant, "cash", decimal.NewFromInt(500))
	fm.RecordPayment(ctx, tenant, "card", decimal.NewFromInt(20))
	fm.RecordAllocation(ctx, tenant, "apply_credit")
	fm.RecordPaymentVoided(ctx, tenant)
	fm.RecordJournalPosted(ctx, tenant)
	fm.RecordInvoiceTransition(ctx, tenant, "paid")
	fm.RecordOperation(ctx, "payment.record", "ok")
	fm.RecordEvent(ctx, "payment.recorded")

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, metrics["finance_payments_recorded_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["finance_allocations_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["finance_payments_voided_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["finance_journal_entries_posted_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["finance_invoice_transitions_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["finance_operations_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["finance_domain_events_total"]))

	hist, ok := metrics["finance_payment_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)
}

func TestFinanceMetrics_NilIsNoop(t *testing.T) {
	var fm *FinanceMetrics
	assert.NotPanics(t, func() {
		fm.RecordPayment(context.Background(), uuid.New(), "cash", decimal.NewFromInt(1))
		fm.RecordOperation(context.Background(), "x", "ok")
		fm.RecordEvent(context.Background(), "x")
	})
}
