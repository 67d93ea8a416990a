package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// EventRecorder is an event handler that keeps every event it receives
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	events     []shared.DomainEvent
}

// NewEventRecorder records the given event types, or all of them when none
// are named.
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// For returns the recorded events of one tenant and type
func (r *EventRecorder) For(tenantID uuid.UUID, eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range r.Events() {
		if e.EventType() == eventType && e.TenantID() == tenantID {
			out = append(out, e)
		}
	}
	return out
}

// WaitFor blocks until n events of eventType arrived for the tenant.
// Delivery is asynchronous, so tests poll instead of asserting right away.
func (r *EventRecorder) WaitFor(t *testing.T, tenantID uuid.UUID, eventType string, n int) []shared.DomainEvent {
	t.Helper()

	var got []shared.DomainEvent
	require.Eventually(t, func() bool {
		got = r.For(tenantID, eventType)
		return len(got) >= n
	}, 5*time.Second, 20*time.Millisecond, "waiting for %d %s events", n, eventType)
	return got
}

var _ shared.EventHandler = (*EventRecorder)(nil)
