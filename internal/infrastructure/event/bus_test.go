package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, finance.AggregateTypeInvoice, uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	err, p := h.err, h.panicWith
	h.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(finance.EventTypePaymentRecorded)
	bus.Subscribe(handler)

	e1, e2 := newTestEvent(finance.EventTypePaymentRecorded), newTestEvent(finance.EventTypePaymentRecorded)
	require.NoError(t, bus.Publish(context.Background(), e1, e2))

	require.Equal(t, 2, handler.count())
	assert.Same(t, e1, handler.handled[0])
	assert.Same(t, e2, handler.handled[1])
	delivered, failed := bus.Stats()
	assert.Equal(t, int64(2), delivered)
	assert.Zero(t, failed)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(finance.EventTypePaymentRecorded)
	bus.Subscribe(handler, ledger.EventTypeJournalEntryPosted)

	_ = bus.Publish(context.Background(), newTestEvent(finance.EventTypePaymentRecorded))
	assert.Equal(t, 0, handler.count())
	_ = bus.Publish(context.Background(), newTestEvent(ledger.EventTypeJournalEntryPosted))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	all := newTestHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent(finance.EventTypeInvoiceCreated),
		newTestEvent(finance.EventTypePaymentVoided),
	))
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler(finance.EventTypeInvoiceStatusChanged)
	failing.err = errors.New("boom")
	panicking := newTestHandler(finance.EventTypeInvoiceStatusChanged)
	panicking.panicWith = "unexpected nil"
	healthy := newTestHandler(finance.EventTypeInvoiceStatusChanged)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(finance.EventTypeInvoiceStatusChanged))
	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())

	delivered, failed := bus.Stats()
	assert.Equal(t, int64(1), delivered)
	assert.Equal(t, int64(2), failed)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(finance.EventTypeInvoiceSent)
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent(finance.EventTypeInvoiceSent))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent(finance.EventTypeInvoiceSent))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler(finance.EventTypePaymentAllocated)
	bus.Subscribe(handler)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(finance.EventTypePaymentAllocated)))
	assert.Equal(t, 0, handler.count())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent(finance.EventTypePaymentAllocated)))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_ConcurrentPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(finance.EventTypePaymentRecorded)
	bus.Subscribe(handler)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newTestEvent(finance.EventTypePaymentRecorded))
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, handler.count())
}
