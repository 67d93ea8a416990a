package partner

import (
	"testing"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer(uuid.New(), " acme ", "Acme Ltd", "ap@acme.test")
	require.NoError(t, err)
	assert.Equal(t, "ACME", c.Code)
	assert.True(t, c.OutstandingBalance.IsZero())
	assert.True(t, c.CreditBalance.IsZero())
	assert.Equal(t, 1, c.Version)

	_, err = NewCustomer(uuid.New(), "", "Acme", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = NewCustomer(uuid.New(), "A1", " ", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCustomer_SetBalances(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "C001", "Acme", "")
	require.NoError(t, err)

	changed := c.SetBalances(decimal.RequireFromString("120.456"), decimal.RequireFromString("-3"))
	assert.True(t, changed)
	assert.Equal(t, "120.46", c.OutstandingBalance.StringFixed(2))
	assert.True(t, c.CreditBalance.IsZero())
	assert.NotNil(t, c.BalancesUpdatedAt)
	require.Len(t, c.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCustomerBalanceChanged, c.GetDomainEvents()[0].EventType())

	c.ClearDomainEvents()
	assert.False(t, c.SetBalances(decimal.RequireFromString("120.46"), decimal.Zero))
	assert.Empty(t, c.GetDomainEvents())
}
