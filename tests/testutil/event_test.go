package testutil

import (
	"context"
	"testing"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRecorder(t *testing.T) {
	rec := NewEventRecorder("payment.recorded")
	assert.Equal(t, []string{"payment.recorded"}, rec.EventTypes())

	tenantA, tenantB := uuid.New(), uuid.New()
	ctx := context.Background()
	for _, e := range []shared.DomainEvent{
		newEvent("payment.recorded", tenantA),
		newEvent("payment.recorded", tenantB),
		newEvent("invoice.sent", tenantA),
	} {
		require.NoError(t, rec.Handle(ctx, e))
	}

	assert.Len(t, rec.Events(), 3)
	assert.Len(t, rec.For(tenantA, "payment.recorded"), 1)
	assert.Empty(t, rec.For(tenantB, "invoice.sent"))

	go func() { _ = rec.Handle(ctx, newEvent("invoice.sent", tenantB)) }()
	got := rec.WaitFor(t, tenantB, "invoice.sent", 1)
	assert.Equal(t, tenantB, got[0].TenantID())
}

func newEvent(eventType string, tenantID uuid.UUID) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), tenantID)
	return &e
}
