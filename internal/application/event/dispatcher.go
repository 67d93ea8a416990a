// Package event runs the side effects of a committed business transaction.
package event

import (
	"context"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Dispatcher publishes domain events, writes audit entries and records
// operation outcomes. It is only ever called after commit, and none of its
// failures are returned to the caller.
type Dispatcher struct {
	publisher shared.EventPublisher
	audit     shared.AuditLogger
	metrics   *telemetry.FinanceMetrics
	logger    *zap.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithEventPublisher sets the event sink
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(d *Dispatcher) { d.publisher = p }
}

// WithAuditLogger sets the audit trail collaborator
func WithAuditLogger(a shared.AuditLogger) Option {
	return func(d *Dispatcher) { d.audit = a }
}

// WithMetrics sets the business metrics
func WithMetrics(m *telemetry.FinanceMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a Dispatcher. Missing collaborators become no-ops.
func NewDispatcher(logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{logger: logger, audit: shared.NoopAuditLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Metrics returns the configured metrics, possibly nil.
func (d *Dispatcher) Metrics() *telemetry.FinanceMetrics {
	return d.metrics
}

// Publish forwards events to the publisher.
func (d *Dispatcher) Publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, events...); err != nil {
			d.logger.Error("Failed to publish domain events",
				zap.Int("count", len(events)),
				zap.Error(err),
			)
		}
	}
	for _, e := range events {
		d.metrics.RecordEvent(ctx, e.EventType())
	}
}

// Audit writes entries to the audit trail.
func (d *Dispatcher) Audit(ctx context.Context, entries ...shared.AuditEntry) {
	for _, entry := range entries {
		if err := d.audit.Log(ctx, entry); err != nil {
			d.logger.Warn("Audit log write failed",
				zap.String("entity_type", entry.EntityType),
				zap.String("entity_id", entry.EntityID.String()),
				zap.String("action", string(entry.Action)),
				zap.Error(err),
			)
		}
	}
}

// Outcome records whether operation succeeded.
func (d *Dispatcher) Outcome(ctx context.Context, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = shared.ErrorCode(err)
		if outcome == "" {
			outcome = "INTERNAL"
		}
	}
	d.metrics.RecordOperation(ctx, operation, outcome)
}
