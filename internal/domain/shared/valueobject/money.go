// Package valueobject holds the monetary rules shared by invoices, payments
// and the ledger.
package valueobject

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits amounts are kept at.
const MoneyPlaces int32 = 2

// Tolerance is the rounding slack used when deciding that an invoice is
// settled or that a trial balance agrees.
var Tolerance = decimal.RequireFromString("0.01")

// RoundMoney rounds half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PositiveAmount rounds d and reports whether the result is strictly positive.
func PositiveAmount(d decimal.Decimal) (decimal.Decimal, bool) {
	r := RoundMoney(d)
	return r, r.IsPositive()
}

// IsSettled reports whether a remaining balance is within Tolerance of zero
// (or below it).
func IsSettled(balanceDue decimal.Decimal) bool {
	return balanceDue.LessThanOrEqual(Tolerance)
}

// WithinTolerance reports |a-b| < Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// FloorZero clamps negative values to zero.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
