package ledger

import (
	"sort"

	"github.com/bizcms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrialBalanceLine is one account's column split
type TrialBalanceLine struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalance lists active accounts with their column totals
type TrialBalance struct {
	TenantID    uuid.UUID          `json:"tenant_id"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	IsBalanced  bool               `json:"is_balanced"`
}

// Difference is debit minus credit.
func (tb *TrialBalance) Difference() decimal.Decimal {
	return tb.TotalDebit.Sub(tb.TotalCredit)
}

// BuildTrialBalance classifies every active account. The result depends only
// on the accounts, so repeated calls over unchanged data are identical.
func BuildTrialBalance(tenantID uuid.UUID, accounts []Account) *TrialBalance {
	active := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive {
			active = append(active, a)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Code < active[j].Code })

	tb := &TrialBalance{
		TenantID:    tenantID,
		Lines:       make([]TrialBalanceLine, 0, len(active)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i := range active {
		debit, credit := active[i].Columns()
		tb.Lines = append(tb.Lines, TrialBalanceLine{
			AccountID: active[i].ID,
			Code:      active[i].Code,
			Name:      active[i].Name,
			Type:      active[i].Type,
			Debit:     debit,
			Credit:    credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(debit)
		tb.TotalCredit = tb.TotalCredit.Add(credit)
	}
	tb.IsBalanced = valueobject.WithinTolerance(tb.TotalDebit, tb.TotalCredit)
	return tb
}
