package finance

import (
	"context"
	"testing"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecalculateCustomer(t *testing.T) {
	store := newMemoryStore()
	scope := &memoryScope{store: store}
	tenantID := uuid.New()
	customer := store.seedCustomer(tenantID, "C001")
	store.seedInvoice(tenantID, customer.ID, "INV-2026-0001", d("120"), finance.InvoiceStatusSent)
	svc := NewBalanceService(scope, store, zap.NewNop())

	resp, changed, err := svc.RecalculateCustomer(context.Background(), tenantID, customer.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, resp.OutstandingBalance.Equal(d("120")))
	assert.NotNil(t, resp.BalancesUpdatedAt)

	_, changed, err = svc.RecalculateCustomer(context.Background(), tenantID, customer.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second run finds nothing to fix")

	_, _, err = svc.RecalculateCustomer(context.Background(), uuid.New(), customer.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecalculateAll(t *testing.T) {
	store := newMemoryStore()
	scope := &memoryScope{store: store}
	tenantID := uuid.New()
	stale := store.seedCustomer(tenantID, "C001")
	store.seedCustomer(tenantID, "C002")
	store.seedCustomer(uuid.New(), "X001")
	store.seedInvoice(tenantID, stale.ID, "INV-2026-0001", d("80"), finance.InvoiceStatusSent)

	result, err := NewBalanceService(scope, store, nil).RecalculateAll(context.Background(), tenantID)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Customers)
	assert.Equal(t, 1, result.Changed)
	assert.True(t, store.customer(stale.ID).OutstandingBalance.Equal(d("80")))
}
