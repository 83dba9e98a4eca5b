package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// GSTRate is the flat Australian GST rate (10%).
var GSTRate = decimal.NewFromFloat(0.10)

// GSTDivisor converts a GST-inclusive amount to its net component (amount / 1.1).
var GSTDivisor = decimal.NewFromFloat(1.1)

// RoundCurrency rounds a monetary amount to cents, half away from zero: an
// exact half-cent rounds to the larger magnitude in both directions, so
// 0.105 becomes 0.11 and -0.105 becomes -0.11. Refund and credit amounts
// keep the same cent boundaries as their positive counterparts. Every
// computation boundary rounds through here so drift can never accumulate
// across a batch.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AmountFromFloat converts a raw float into a monetary decimal, rejecting
// NaN and infinities. Amounts sourced from float-typed data must pass
// through here before any GST math sees them; the HTTP handlers avoid it
// entirely by taking amounts as decimal strings.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}
