package partner

import (
	"strings"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// EventTypeCustomerBalanceChanged is published when recomputation moved a balance
const EventTypeCustomerBalanceChanged = "customer.balance_changed"

// Customer is the billed party. Its two balances are caches of invoice and
// payment state and are only ever overwritten by a full recomputation.
type Customer struct {
	shared.TenantAggregateRoot
	Code               string
	Name               string
	Email              string
	OutstandingBalance decimal.Decimal
	CreditBalance      decimal.Decimal
	BalancesUpdatedAt  *time.Time
}

// NewCustomer creates a customer with zero balances
func NewCustomer(tenantID uuid.UUID, code, name, email string) (*Customer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewValidationError("customer code is required")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("customer code cannot exceed 50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("customer name is required")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Email:               strings.TrimSpace(email),
		OutstandingBalance:  decimal.Zero,
		CreditBalance:       decimal.Zero,
	}, nil
}

// SetBalances stores freshly computed balances. Returns true if either changed.
func (c *Customer) SetBalances(outstanding, credit decimal.Decimal) bool {
	outstanding = valueobject.RoundMoney(valueobject.FloorZero(outstanding))
	credit = valueobject.RoundMoney(valueobject.FloorZero(credit))

	changed := !outstanding.Equal(c.OutstandingBalance) || !credit.Equal(c.CreditBalance)
	now := time.Now()
	c.BalancesUpdatedAt = &now
	if !changed {
		return false
	}

	event := &CustomerBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerBalanceChanged, AggregateTypeCustomer, c.ID, c.TenantID),
		OldOutstanding:  c.OutstandingBalance,
		NewOutstanding:  outstanding,
		OldCredit:       c.CreditBalance,
		NewCredit:       credit,
	}
	c.OutstandingBalance = outstanding
	c.CreditBalance = credit
	c.Touch()
	c.AddDomainEvent(event)
	return true
}

// CustomerBalanceChangedEvent carries before and after balances
type CustomerBalanceChangedEvent struct {
	shared.BaseDomainEvent
	OldOutstanding decimal.Decimal `json:"old_outstanding"`
	NewOutstanding decimal.Decimal `json:"new_outstanding"`
	OldCredit      decimal.Decimal `json:"old_credit"`
	NewCredit      decimal.Decimal `json:"new_credit"`
}
