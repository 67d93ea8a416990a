package finance

import (
	"context"
	"testing"
	"time"

	"github.com/bizcms/backend/internal/application/event"
	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type invoiceFixture struct {
	store    *memoryStore
	invoices *InvoiceService
	payments *PaymentService
	tenantID uuid.UUID
	customer *partner.Customer
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	store := newMemoryStore()
	scope := &memoryScope{store: store}
	tenantID := uuid.New()
	balances := NewBalanceService(scope, store, zap.NewNop())
	dispatcher := event.NewDispatcher(zap.NewNop())
	svc := NewInvoiceService(scope, store, balances, dispatcher, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return &invoiceFixture{
		store:    store,
		invoices: svc,
		payments: NewPaymentService(scope, store, balances, dispatcher, zap.NewNop()),
		tenantID: tenantID,
		customer: store.seedCustomer(tenantID, "C001"),
	}
}

func (f *invoiceFixture) create(t *testing.T, items ...InvoiceItemRequest) *InvoiceResponse {
	t.Helper()
	resp, err := f.invoices.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TenantID:    f.tenantID,
		CustomerID:  f.customer.ID,
		Title:       "Consulting",
		InvoiceDate: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
		TaxRate:     d("0.10"),
		Items:       items,
	})
	require.NoError(t, err)
	return resp
}

func item(desc, qty, price string) InvoiceItemRequest {
	return InvoiceItemRequest{Description: desc, Quantity: d(qty), UnitPrice: d(price)}
}

func (f *invoiceFixture) transition(id uuid.UUID, reason string) InvoiceTransitionRequest {
	return InvoiceTransitionRequest{TenantID: f.tenantID, InvoiceID: id, Reason: reason}
}

// =============================================================================
// CreateInvoice / UpdateDraft
// =============================================================================

func TestCreateInvoice(t *testing.T) {
	f := newInvoiceFixture(t)

	first := f.create(t, item("Design", "2", "150"), item("Review", "1", "100"))
	second := f.create(t, item("Support", "1", "50"))

	assert.Equal(t, "INV-2026-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-2026-0002", second.InvoiceNumber)
	assert.Equal(t, "draft", first.Status)
	assert.True(t, first.Subtotal.Equal(d("400")))
	assert.True(t, first.TaxAmount.Equal(d("40")))
	assert.True(t, first.TotalAmount.Equal(d("440")))
	assert.Len(t, first.Items, 2)
	assert.True(t, f.store.customer(f.customer.ID).OutstandingBalance.Equal(d("495")))
	assert.Empty(t, f.store.checkInvariants())
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.invoices.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TenantID:    f.tenantID,
		CustomerID:  f.customer.ID,
		InvoiceDate: time.Now(),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.invoices.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TenantID:    f.tenantID,
		CustomerID:  uuid.New(),
		InvoiceDate: time.Now(),
		Items:       []InvoiceItemRequest{item("x", "1", "1")},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, f.store.invoices)
}

func TestUpdateDraft_ReplacesItems(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, item("Design", "2", "150"), item("Review", "1", "100"))

	updated, err := f.invoices.UpdateDraft(context.Background(), UpdateInvoiceRequest{
		TenantID:    f.tenantID,
		InvoiceID:   inv.ID,
		Title:       "Consulting, revised",
		InvoiceDate: inv.InvoiceDate,
		TaxRate:     decimal.Zero,
		Items:       []InvoiceItemRequest{item("Flat fee", "1", "250")},
	})

	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(d("250")))
	stored := f.store.invoice(inv.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Flat fee", stored.Items[0].Description)
	assert.Equal(t, "Consulting, revised", stored.Title)
	assert.True(t, f.store.customer(f.customer.ID).OutstandingBalance.Equal(d("250")))
}

func TestUpdateDraft_RejectsSentInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, item("Design", "1", "100"))
	_, err := f.invoices.SendInvoice(context.Background(), f.transition(inv.ID, ""))
	require.NoError(t, err)

	_, err = f.invoices.UpdateDraft(context.Background(), UpdateInvoiceRequest{
		TenantID:    f.tenantID,
		InvoiceID:   inv.ID,
		InvoiceDate: inv.InvoiceDate,
		Items:       []InvoiceItemRequest{item("Other", "1", "1")},
	})

	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.True(t, f.store.invoice(inv.ID).TotalAmount.Equal(d("110")))
}

// =============================================================================
// Transitions
// =============================================================================

func TestSendInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, item("Design", "1", "100"))

	sent, err := f.invoices.SendInvoice(context.Background(), f.transition(inv.ID, ""))
	require.NoError(t, err)
	assert.Equal(t, "sent", sent.Status)
	assert.NotNil(t, sent.SentAt)

	_, err = f.invoices.SendInvoice(context.Background(), f.transition(inv.ID, ""))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCancelInvoice_DropsOutstanding(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, item("Design", "1", "100"))
	require.True(t, f.store.customer(f.customer.ID).OutstandingBalance.Equal(d("110")))

	cancelled, err := f.invoices.CancelInvoice(context.Background(), f.transition(inv.ID, "customer withdrew"))

	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Contains(t, cancelled.Notes, "customer withdrew")
	assert.True(t, f.store.customer(f.customer.ID).OutstandingBalance.IsZero())
}

func TestCancelInvoice_WithPayments(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, item("Design", "1", "100"))
	_, err := f.invoices.SendInvoice(context.Background(), f.transition(inv.ID, ""))
	require.NoError(t, err)
	_, err = f.payments.RecordPayment(context.Background(), RecordPaymentRequest{
		TenantID:    f.tenantID,
		CustomerID:  f.customer.ID,
		Amount:      d("50"),
		Method:      finance.PaymentMethodCash,
		Allocations: map[uuid.UUID]decimal.Decimal{inv.ID: d("50")},
	})
	require.NoError(t, err)

	_, err = f.invoices.CancelInvoice(context.Background(), f.transition(inv.ID, "oops"))

	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, finance.InvoiceStatusPartial, f.store.invoice(inv.ID).Status)
}

func TestVoidInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, item("Design", "1", "100"))
	_, err := f.invoices.SendInvoice(context.Background(), f.transition(inv.ID, ""))
	require.NoError(t, err)

	_, err = f.invoices.VoidInvoice(context.Background(), f.transition(inv.ID, "not paid yet"))
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.payments.RecordPayment(context.Background(), RecordPaymentRequest{
		TenantID:    f.tenantID,
		CustomerID:  f.customer.ID,
		Amount:      d("110"),
		Method:      finance.PaymentMethodCash,
		Allocations: map[uuid.UUID]decimal.Decimal{inv.ID: d("110")},
	})
	require.NoError(t, err)

	voided, err := f.invoices.VoidInvoice(context.Background(), f.transition(inv.ID, "issued in error"))
	require.NoError(t, err)
	assert.Equal(t, "void", voided.Status)
	assert.NotNil(t, voided.VoidedAt)
	assert.True(t, f.store.customer(f.customer.ID).OutstandingBalance.IsZero())

	_, err = f.invoices.CancelInvoice(context.Background(), f.transition(inv.ID, "again"))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

// =============================================================================
// Queries
// =============================================================================

func TestInvoiceQueries(t *testing.T) {
	f := newInvoiceFixture(t)
	a := f.create(t, item("A", "1", "10"))
	f.create(t, item("B", "1", "20"))
	_, err := f.invoices.SendInvoice(context.Background(), f.transition(a.ID, ""))
	require.NoError(t, err)

	got, err := f.invoices.GetInvoice(context.Background(), f.tenantID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "sent", got.Status)
	assert.True(t, got.BalanceDue.Equal(d("11")))

	_, err = f.invoices.GetInvoice(context.Background(), uuid.New(), a.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	page, err := f.invoices.ListInvoices(context.Background(), f.tenantID, finance.InvoiceFilter{
		Filter:   shared.Filter{Page: 1, PageSize: 20},
		Statuses: []finance.InvoiceStatus{finance.InvoiceStatusDraft},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "INV-2026-0002", page.Items[0].InvoiceNumber)
}
