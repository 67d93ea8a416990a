// Package event delivers committed domain events to in-process subscribers.
package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bizcms/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "finance-backend/event"

// InMemoryEventBus delivers events synchronously to registered handlers.
// A failing or panicking handler is logged and never stops delivery to the
// others, and Publish never returns a handler error: events are published
// after commit, when the caller can no longer undo anything.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	tracer    trace.Tracer
	running   atomic.Bool
	inflight  sync.WaitGroup
	delivered atomic.Int64
	failed    atomic.Int64
}

// NewInMemoryEventBus creates a bus. It accepts events before Start is called.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		tracer:   otel.GetTracerProvider().Tracer(tracerName),
	}
	b.running.Store(true)
	return b
}

// Publish hands every event to its handlers in order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	b.inflight.Add(1)
	defer b.inflight.Done()

	for _, event := range events {
		b.deliver(ctx, event)
	}
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	handlers := b.registry.GetHandlers(event.EventType())
	if len(handlers) == 0 {
		return
	}

	ctx, span := b.tracer.Start(ctx, "event."+event.EventType(),
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("event.id", event.EventID().String()),
			attribute.String("event.aggregate_type", event.AggregateType()),
			attribute.String("tenant.id", event.TenantID().String()),
			attribute.Int("event.handlers", len(handlers)),
		),
	)
	defer span.End()

	for _, handler := range handlers {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.failed.Add(1)
			span.RecordError(err)
			span.SetStatus(codes.Error, "handler failed")
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.String("aggregate_id", event.AggregateID().String()),
				zap.Error(err),
			)
			continue
		}
		b.delivered.Add(1)
	}
}

// Subscribe registers handler for eventTypes, or for its own EventTypes when
// none are given. A handler with no types at all receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed", zap.String("handler", fmt.Sprintf("%T", handler)))
}

// Start (re)opens the bus for publishing
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Int("handlers", len(b.registry.GetAllHandlers())))
	return nil
}

// Stop rejects new events and waits for in-flight deliveries, or for ctx.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}

	b.logger.Info("event bus stopped",
		zap.Int64("delivered", b.delivered.Load()),
		zap.Int64("failed", b.failed.Load()),
	)
	return nil
}

// Stats returns how many handler invocations succeeded and failed
func (b *InMemoryEventBus) Stats() (delivered, failed int64) {
	return b.delivered.Load(), b.failed.Load()
}

func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %T panicked: %v", handler, r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
