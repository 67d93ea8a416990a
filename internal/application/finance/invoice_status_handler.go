package finance

import (
	"context"
	"fmt"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceStatusHandler counts invoice status transitions as they are
// published on the event bus.
type InvoiceStatusHandler struct {
	metrics *telemetry.FinanceMetrics
	logger  *zap.Logger
}

// NewInvoiceStatusHandler creates the handler. A nil metrics value only logs.
func NewInvoiceStatusHandler(metrics *telemetry.FinanceMetrics, logger *zap.Logger) *InvoiceStatusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceStatusHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceStatusHandler) EventTypes() []string {
	return []string{finance.EventTypeInvoiceStatusChanged}
}

// Handle records one transition
func (h *InvoiceStatusHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*finance.InvoiceStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			finance.EventTypeInvoiceStatusChanged, event.EventType())
	}

	h.metrics.RecordInvoiceTransition(ctx, event.TenantID(), string(changed.To))
	h.logger.Debug("invoice status changed",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("invoice_id", event.AggregateID().String()),
		zap.String("from", string(changed.From)),
		zap.String("to", string(changed.To)),
		zap.String("amount_paid", changed.AmountPaid.StringFixed(2)),
	)
	return nil
}

var _ shared.EventHandler = (*InvoiceStatusHandler)(nil)
