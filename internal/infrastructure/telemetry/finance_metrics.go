package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FinanceMeterName is the meter the finance instruments live under
const FinanceMeterName = "finance-backend/finance"

// FinanceMetrics holds the business instruments of the finance core.
// A nil *FinanceMetrics is valid and records nothing.
type FinanceMetrics struct {
	paymentsRecorded  *Counter
	paymentAmount     *Histogram
	paymentsVoided    *Counter
	allocations       *Counter
	invoiceTransition *Counter
	journalPosted     *Counter
	operations        *Counter
	events            *Counter
}

// NewFinanceMetrics creates all instruments on meter.
func NewFinanceMetrics(meter metric.Meter) (*FinanceMetrics, error) {
	var (
		fm  FinanceMetrics
		err error
	)
	if fm.paymentsRecorded, err = NewCounter(meter, "finance_payments_recorded_total", "Payments recorded", "{payment}"); err != nil {
		return nil, err
	}
	if fm.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "finance_payment_amount",
		Description: "Amount of recorded payments",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if fm.paymentsVoided, err = NewCounter(meter, "finance_payments_voided_total", "Payments voided", "{payment}"); err != nil {
		return nil, err
	}
	if fm.allocations, err = NewCounter(meter, "finance_allocations_total", "Payment allocations created", "{allocation}"); err != nil {
		return nil, err
	}
	if fm.invoiceTransition, err = NewCounter(meter, "finance_invoice_transitions_total", "Invoice status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if fm.journalPosted, err = NewCounter(meter, "finance_journal_entries_posted_total", "Journal entries posted", "{entry}"); err != nil {
		return nil, err
	}
	if fm.operations, err = NewCounter(meter, "finance_operations_total", "Finance service operations by outcome", "{operation}"); err != nil {
		return nil, err
	}
	if fm.events, err = NewCounter(meter, "finance_domain_events_total", "Domain events published", "{event}"); err != nil {
		return nil, err
	}
	return &fm, nil
}

// RecordPayment counts a recorded payment and its amount.
func (m *FinanceMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String()), AttrPaymentMethod.String(method)}
	m.paymentsRecorded.Inc(ctx, attrs...)
	m.paymentAmount.Record(ctx, amount.InexactFloat64(), attrs...)
}

// RecordPaymentVoided counts a void.
func (m *FinanceMetrics) RecordPaymentVoided(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.paymentsVoided.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordAllocation counts an allocation by the operation that created it.
func (m *FinanceMetrics) RecordAllocation(ctx context.Context, tenantID uuid.UUID, operation string) {
	if m == nil {
		return
	}
	m.allocations.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrOperation.String(operation))
}

// RecordInvoiceTransition counts an invoice entering status.
func (m *FinanceMetrics) RecordInvoiceTransition(ctx context.Context, tenantID uuid.UUID, status string) {
	if m == nil {
		return
	}
	m.invoiceTransition.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrInvoiceStatus.String(status))
}

// RecordJournalPosted counts a posted journal entry.
func (m *FinanceMetrics) RecordJournalPosted(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.journalPosted.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordOperation counts a service call with outcome "ok" or an error code.
func (m *FinanceMetrics) RecordOperation(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.Inc(ctx, AttrOperation.String(operation), AttrOutcome.String(outcome))
}

// RecordEvent counts a published domain event.
func (m *FinanceMetrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.events.Inc(ctx, AttrEventType.String(eventType))
}
