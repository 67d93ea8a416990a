package finance

import (
	"github.com/bizcms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CustomerBalances are the cached aggregates stored on a customer.
type CustomerBalances struct {
	Outstanding decimal.Decimal
	Credit      decimal.Decimal
}

// ComputeCustomerBalances derives both balances from scratch. Cancelled and
// void invoices owe nothing; voided payments carry no credit.
func ComputeCustomerBalances(invoices []Invoice, payments []Payment) CustomerBalances {
	outstanding := decimal.Zero
	for i := range invoices {
		outstanding = outstanding.Add(invoices[i].OutstandingContribution())
	}

	credit := decimal.Zero
	for i := range payments {
		if payments[i].IsVoided {
			continue
		}
		credit = credit.Add(payments[i].UnallocatedAmount)
	}

	return CustomerBalances{
		Outstanding: valueobject.FloorZero(outstanding),
		Credit:      valueobject.FloorZero(credit),
	}
}
