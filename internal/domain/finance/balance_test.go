package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCustomerBalances(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		b := ComputeCustomerBalances(nil, nil)
		assert.True(t, b.Outstanding.IsZero())
		assert.True(t, b.Credit.IsZero())
	})

	t.Run("mixed invoices and payments", func(t *testing.T) {
		sent := createSentInvoice(t, "1000")
		partial := createSentInvoice(t, "500")
		require.NoError(t, partial.ApplyPayment(d("200")))
		draft := createTestInvoice(t, "70")
		cancelled := createSentInvoice(t, "900")
		require.NoError(t, cancelled.Cancel("dup"))
		voided := createSentInvoice(t, "50")
		require.NoError(t, voided.ApplyPayment(d("50")))
		require.NoError(t, voided.Void("err"))

		live := createTestPayment(t, "800")
		_, err := live.Allocate(uuid.New(), d("200"), uuid.Nil)
		require.NoError(t, err)
		dead := createTestPayment(t, "999")
		_, err = dead.Void("bounced", uuid.Nil)
		require.NoError(t, err)

		b := ComputeCustomerBalances(
			[]Invoice{*sent, *partial, *draft, *cancelled, *voided},
			[]Payment{*live, *dead},
		)
		// 1000 + 300 + 70
		assert.True(t, d("1370").Equal(b.Outstanding), b.Outstanding.String())
		assert.True(t, d("600").Equal(b.Credit), b.Credit.String())
	})

	t.Run("overpaid invoice contributes nothing", func(t *testing.T) {
		inv := createSentInvoice(t, "100")
		require.NoError(t, inv.ApplyPayment(d("150")))
		b := ComputeCustomerBalances([]Invoice{*inv}, nil)
		assert.True(t, b.Outstanding.IsZero())
	})
}
