// Package ledger holds the chart of accounts and double-entry journal.
package ledger

import (
	"strings"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the fundamental classification of an account
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation
func (t AccountType) String() string {
	return string(t)
}

// IsDebitNormal is true for assets and expenses, which grow on the debit side.
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account is one node of a tenant's chart of accounts
type Account struct {
	shared.TenantAggregateRoot
	Code           string
	Name           string
	Type           AccountType
	Category       string
	CurrentBalance decimal.Decimal
	IsSystem       bool
	IsActive       bool
}

// NewAccount creates an active account with a zero balance
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType, category string) (*Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("account code is required")
	}
	if len(code) > 20 {
		return nil, shared.NewValidationError("account code cannot exceed 20 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("account name is required")
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError("invalid account type %q", accountType)
	}
	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		Category:            strings.TrimSpace(category),
		CurrentBalance:      decimal.Zero,
		IsActive:            true,
	}, nil
}

// ApplyLine moves the balance by one posted line in the account's normal direction.
func (a *Account) ApplyLine(debit, credit decimal.Decimal) {
	delta := debit.Sub(credit)
	if !a.Type.IsDebitNormal() {
		delta = delta.Neg()
	}
	a.CurrentBalance = valueobject.RoundMoney(a.CurrentBalance.Add(delta))
	a.Touch()
}

// Columns splits the balance into trial balance debit and credit columns.
// A balance opposite to the normal side lands in the other column.
func (a *Account) Columns() (debit, credit decimal.Decimal) {
	bal := a.CurrentBalance
	if a.Type.IsDebitNormal() {
		if bal.IsNegative() {
			return decimal.Zero, bal.Neg()
		}
		return bal, decimal.Zero
	}
	if bal.IsNegative() {
		return bal.Neg(), decimal.Zero
	}
	return decimal.Zero, bal
}
