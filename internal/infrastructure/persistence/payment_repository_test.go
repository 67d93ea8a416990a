package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T, tenantID, customerID uuid.UUID, number string, amount int64, date time.Time) *finance.Payment {
	t.Helper()
	p, err := finance.NewPayment(tenantID, finance.NewPaymentInput{
		CustomerID:    customerID,
		PaymentNumber: number,
		Amount:        decimal.NewFromInt(amount),
		Method:        finance.PaymentMethodBankTransfer,
		PaymentDate:   date,
	}, uuid.New())
	require.NoError(t, err)
	return p
}

func TestGormPaymentRepository(t *testing.T) {
	db := newSQLiteDB(t)
	payments := NewGormPaymentRepository(db)
	allocations := NewGormAllocationRepository(db)
	ctx := context.Background()
	tenantID, customerID := uuid.New(), uuid.New()
	invoiceID := uuid.New()

	late := newTestPayment(t, tenantID, customerID, "PAY-2026-0001", 100, day(2026, 6, 1))
	early := newTestPayment(t, tenantID, customerID, "PAY-2026-0002", 50, day(2026, 5, 1))
	voided := newTestPayment(t, tenantID, customerID, "PAY-2026-0003", 70, day(2026, 4, 1))
	for _, p := range []*finance.Payment{late, early, voided} {
		require.NoError(t, payments.Create(ctx, p))
	}

	alloc, err := late.Allocate(invoiceID, decimal.NewFromInt(30), uuid.New())
	require.NoError(t, err)
	require.NoError(t, allocations.Create(ctx, alloc))
	require.NoError(t, payments.SaveWithLock(ctx, late))

	_, err = voided.Void("bounced", uuid.New())
	require.NoError(t, err)
	require.NoError(t, payments.SaveWithLock(ctx, voided))

	t.Run("create writes the header only", func(t *testing.T) {
		p := newTestPayment(t, tenantID, uuid.New(), "PAY-2026-0009", 10, day(2026, 6, 2))
		p.Allocations = []finance.PaymentAllocation{{ID: uuid.New(), TenantID: tenantID, PaymentID: p.ID, InvoiceID: invoiceID, Amount: decimal.NewFromInt(1)}}
		require.NoError(t, payments.Create(ctx, p))

		got, err := payments.FindByIDForTenant(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Allocations)
	})

	t.Run("loads allocations", func(t *testing.T) {
		got, err := payments.FindByIDForTenant(ctx, tenantID, late.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Len(t, got.Allocations, 1)
		assert.Equal(t, invoiceID, got.Allocations[0].InvoiceID)
		assert.True(t, got.UnallocatedAmount.Equal(decimal.NewFromInt(70)))
		assert.Equal(t, late.Version, got.Version)
	})

	t.Run("duplicate number", func(t *testing.T) {
		dup := newTestPayment(t, tenantID, customerID, "PAY-2026-0001", 1, day(2026, 6, 1))
		err := payments.Create(ctx, dup)
		assert.Equal(t, shared.CodeAlreadyExists, shared.ErrorCode(err))
	})

	t.Run("credits are live, unallocated and oldest first", func(t *testing.T) {
		credits, err := payments.FindCreditsForUpdate(ctx, tenantID, customerID)
		require.NoError(t, err)
		require.Len(t, credits, 2)
		assert.Equal(t, early.ID, credits[0].ID)
		assert.Equal(t, late.ID, credits[1].ID)
		assert.Len(t, credits[1].Allocations, 1)
	})

	t.Run("voided payments hidden by default", func(t *testing.T) {
		filter := finance.PaymentFilter{CustomerID: &customerID}
		list, total, err := payments.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)

		filter.IncludeVoided = true
		_, total, err = payments.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("customer payments include voided", func(t *testing.T) {
		list, err := payments.FindByCustomer(ctx, tenantID, customerID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, voided.ID, list[0].ID)
		assert.True(t, list[0].IsVoided)
		assert.Equal(t, "bounced", list[0].VoidReason)
	})

	t.Run("allocation lookups", func(t *testing.T) {
		byPayment, err := allocations.FindByPayment(ctx, tenantID, late.ID)
		require.NoError(t, err)
		assert.Len(t, byPayment, 1)

		byInvoice, err := allocations.FindByInvoice(ctx, tenantID, invoiceID)
		require.NoError(t, err)
		require.Len(t, byInvoice, 1)
		assert.True(t, byInvoice[0].Amount.Equal(decimal.NewFromInt(30)))
	})

	t.Run("delete by payment reports rows", func(t *testing.T) {
		n, err := allocations.DeleteByPayment(ctx, tenantID, late.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = allocations.DeleteByPayment(ctx, tenantID, late.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		stale := *early
		stale.Version = early.Version + 5
		err := payments.SaveWithLock(ctx, &stale)
		assert.Equal(t, shared.CodeConcurrencyConflict, shared.ErrorCode(err))
	})
}
