package finance

import (
	"testing"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testDraft(lines ...string) InvoiceDraft {
	items := make([]InvoiceItemInput, 0, len(lines))
	for _, price := range lines {
		items = append(items, InvoiceItemInput{Description: "Consulting", Quantity: d("1"), UnitPrice: d(price)})
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return InvoiceDraft{
		Title:       "March services",
		InvoiceDate: now,
		DueDate:     now.AddDate(0, 0, 30),
		TaxRate:     decimal.Zero,
		Items:       items,
	}
}

func createTestInvoice(t *testing.T, lines ...string) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), uuid.New(), FormatInvoiceNumber(2026, 1), testDraft(lines...), uuid.New())
	require.NoError(t, err)
	return inv
}

func createSentInvoice(t *testing.T, lines ...string) *Invoice {
	t.Helper()
	inv := createTestInvoice(t, lines...)
	require.NoError(t, inv.Send())
	return inv
}

// ============================================
// DeriveStatus Tests
// ============================================

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		current InvoiceStatus
		total   string
		paid    string
		want    InvoiceStatus
	}{
		{"fully paid", InvoiceStatusSent, "100.00", "100.00", InvoiceStatusPaid},
		{"within tolerance", InvoiceStatusPartial, "100.00", "99.99", InvoiceStatusPaid},
		{"just above tolerance", InvoiceStatusPartial, "100.00", "99.98", InvoiceStatusPartial},
		{"overpaid", InvoiceStatusSent, "100.00", "150.00", InvoiceStatusPaid},
		{"some paid", InvoiceStatusSent, "100.00", "40.00", InvoiceStatusPartial},
		{"paid on draft", InvoiceStatusDraft, "100.00", "40.00", InvoiceStatusPartial},
		{"nothing paid draft", InvoiceStatusDraft, "100.00", "0", InvoiceStatusDraft},
		{"nothing paid sent", InvoiceStatusSent, "100.00", "0", InvoiceStatusSent},
		{"reverted from partial", InvoiceStatusPartial, "100.00", "0", InvoiceStatusSent},
		{"reverted from paid", InvoiceStatusPaid, "100.00", "0", InvoiceStatusSent},
		{"zero total is settled", InvoiceStatusSent, "0", "0", InvoiceStatusPaid},
		{"cancelled sticks", InvoiceStatusCancelled, "100.00", "100.00", InvoiceStatusCancelled},
		{"void sticks", InvoiceStatusVoid, "100.00", "0", InvoiceStatusVoid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.current, d(tt.total), d(tt.paid)))
		})
	}
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusVoid} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, InvoiceStatus("overdue").IsValid())
	assert.False(t, InvoiceStatus("").IsValid())
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-0001", FormatInvoiceNumber(2026, 1))
	assert.Equal(t, "INV-2026-12345", FormatInvoiceNumber(2026, 12345))
}

// ============================================
// NewInvoice Tests
// ============================================

func TestNewInvoice(t *testing.T) {
	t.Run("computes totals with tax", func(t *testing.T) {
		draft := testDraft()
		draft.TaxRate = d("0.13")
		draft.Items = []InvoiceItemInput{
			{Description: "Widget", Quantity: d("3"), UnitPrice: d("19.99")},
			{Description: "Setup", Quantity: d("1"), UnitPrice: d("40")},
		}
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2026-0007", draft, uuid.New())
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, d("99.97").Equal(inv.Subtotal), inv.Subtotal.String())
		assert.True(t, d("13.00").Equal(inv.TaxAmount), inv.TaxAmount.String())
		assert.True(t, d("112.97").Equal(inv.TotalAmount), inv.TotalAmount.String())
		assert.True(t, inv.AmountPaid.IsZero())
		require.Len(t, inv.Items, 2)
		assert.True(t, d("59.97").Equal(inv.Items[0].LineTotal))
		assert.Equal(t, 1, inv.Items[1].SortOrder)
		assert.Equal(t, inv.ID, inv.Items[0].InvoiceID)
		require.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeInvoiceCreated, inv.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects invalid drafts", func(t *testing.T) {
		noItems := testDraft()
		badTax := testDraft("10")
		badTax.TaxRate = d("1.5")
		badDue := testDraft("10")
		badDue.DueDate = badDue.InvoiceDate.AddDate(0, 0, -1)
		badItem := testDraft()
		badItem.Items = []InvoiceItemInput{{Description: "x", Quantity: d("0"), UnitPrice: d("1")}}
		noDesc := testDraft()
		noDesc.Items = []InvoiceItemInput{{Description: "  ", Quantity: d("1"), UnitPrice: d("1")}}

		for name, draft := range map[string]InvoiceDraft{
			"no items": noItems, "tax rate": badTax, "due date": badDue,
			"zero quantity": badItem, "blank description": noDesc,
		} {
			t.Run(name, func(t *testing.T) {
				_, err := NewInvoice(uuid.New(), uuid.New(), "INV-2026-0001", draft, uuid.New())
				assert.ErrorIs(t, err, shared.ErrValidation)
			})
		}
	})

	t.Run("requires customer", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.Nil, "INV-2026-0001", testDraft("1"), uuid.New())
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

// ============================================
// Lifecycle Tests
// ============================================

func TestInvoice_UpdateDraft(t *testing.T) {
	inv := createTestInvoice(t, "100")
	inv.ClearDomainEvents()

	require.NoError(t, inv.UpdateDraft(testDraft("50", "25")))
	assert.True(t, d("75").Equal(inv.TotalAmount))
	assert.Len(t, inv.Items, 2)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, EventTypeInvoiceUpdated, inv.GetDomainEvents()[0].EventType())

	require.NoError(t, inv.Send())
	err := inv.UpdateDraft(testDraft("10"))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestInvoice_Send(t *testing.T) {
	inv := createSentInvoice(t, "100")
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.NotNil(t, inv.SentAt)

	assert.ErrorIs(t, inv.Send(), shared.ErrInvalidState)
}

func TestInvoice_ApplyAndReversePayment(t *testing.T) {
	inv := createSentInvoice(t, "1000")

	require.NoError(t, inv.ApplyPayment(d("600")))
	assert.Equal(t, InvoiceStatusPartial, inv.Status)
	assert.True(t, d("400").Equal(inv.BalanceDue()))

	require.NoError(t, inv.ApplyPayment(d("400")))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.BalanceDue().IsZero())

	require.NoError(t, inv.ReversePayment(d("400")))
	assert.Equal(t, InvoiceStatusPartial, inv.Status)

	require.NoError(t, inv.ReversePayment(d("600")))
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.True(t, inv.AmountPaid.IsZero())

	assert.ErrorIs(t, inv.ReversePayment(d("1")), shared.ErrInvalidState)
	assert.ErrorIs(t, inv.ApplyPayment(d("0")), shared.ErrValidation)
}

func TestInvoice_DraftPaymentKeepsAmountsConsistent(t *testing.T) {
	inv := createTestInvoice(t, "100")
	require.NoError(t, inv.ApplyPayment(d("30")))
	assert.Equal(t, InvoiceStatusPartial, inv.Status)

	require.NoError(t, inv.ReversePayment(d("30")))
	assert.Equal(t, InvoiceStatusDraft, inv.Status)

	require.NoError(t, inv.ApplyPayment(d("100")))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	require.NoError(t, inv.ReversePayment(d("60")))
	assert.Equal(t, InvoiceStatusPartial, inv.Status)
	require.NoError(t, inv.ReversePayment(d("40")))
	assert.Equal(t, InvoiceStatusDraft, inv.Status, "never sent, so it falls back to draft")
	assert.Nil(t, inv.SentAt)
}

func TestInvoice_Cancel(t *testing.T) {
	t.Run("unpaid sent invoice", func(t *testing.T) {
		inv := createSentInvoice(t, "100")
		require.NoError(t, inv.Cancel("duplicate"))
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.Contains(t, inv.Notes, "duplicate")
		assert.Contains(t, inv.Notes, "[Cancelled ")
		assert.NotNil(t, inv.CancelledAt)
		assert.True(t, inv.OutstandingContribution().IsZero())
	})

	t.Run("draft invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "100")
		require.NoError(t, inv.Cancel(""))
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	})

	t.Run("partially paid is rejected", func(t *testing.T) {
		inv := createSentInvoice(t, "100")
		require.NoError(t, inv.ApplyPayment(d("10")))
		assert.ErrorIs(t, inv.Cancel("x"), shared.ErrInvalidState)
	})

	t.Run("paid is rejected", func(t *testing.T) {
		inv := createSentInvoice(t, "100")
		require.NoError(t, inv.ApplyPayment(d("100")))
		assert.ErrorIs(t, inv.Cancel("x"), shared.ErrInvalidState)
	})

	t.Run("twice is rejected", func(t *testing.T) {
		inv := createSentInvoice(t, "100")
		require.NoError(t, inv.Cancel("x"))
		assert.ErrorIs(t, inv.Cancel("x"), shared.ErrInvalidState)
	})
}

func TestInvoice_Void(t *testing.T) {
	inv := createSentInvoice(t, "100")
	assert.ErrorIs(t, inv.Void("x"), shared.ErrInvalidState)

	require.NoError(t, inv.ApplyPayment(d("100")))
	require.NoError(t, inv.Void("issued in error"))
	assert.Equal(t, InvoiceStatusVoid, inv.Status)
	assert.Contains(t, inv.Notes, "[Voided ")
	assert.True(t, inv.OutstandingContribution().IsZero())

	assert.ErrorIs(t, inv.ApplyPayment(d("1")), shared.ErrInvalidState)

	// reversing onto a void invoice returns the money but keeps the status
	require.NoError(t, inv.ReversePayment(d("100")))
	assert.Equal(t, InvoiceStatusVoid, inv.Status)
	assert.True(t, inv.AmountPaid.IsZero())
}

func TestInvoice_StatusChangedEvents(t *testing.T) {
	inv := createSentInvoice(t, "100")
	inv.ClearDomainEvents()

	require.NoError(t, inv.ApplyPayment(d("50")))
	require.NoError(t, inv.ApplyPayment(d("10")))

	events := inv.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*InvoiceStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, InvoiceStatusSent, changed.From)
	assert.Equal(t, InvoiceStatusPartial, changed.To)
}

func TestInvoice_ReplaceItems(t *testing.T) {
	inv := createTestInvoice(t, "100")
	oldID := inv.Items[0].ID

	require.NoError(t, inv.ReplaceItems([]InvoiceItemInput{
		{Description: "Hours", Quantity: d("2.5"), UnitPrice: d("80")},
	}))
	require.Len(t, inv.Items, 1)
	assert.NotEqual(t, oldID, inv.Items[0].ID)
	assert.True(t, d("200").Equal(inv.TotalAmount))

	assert.ErrorIs(t, inv.ReplaceItems(nil), shared.ErrValidation)

	require.NoError(t, inv.Send())
	assert.ErrorIs(t, inv.ReplaceItems([]InvoiceItemInput{{Description: "x", Quantity: d("1"), UnitPrice: d("1")}}), shared.ErrInvalidState)
}
