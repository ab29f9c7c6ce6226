package shared

import "github.com/shopspring/decimal"

var centsPerUnit = decimal.NewFromInt(100)

// ToCents converts an amount to integer minor units, rounding half away from zero
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerUnit).Round(0).IntPart()
}

// FromCents converts integer minor units back to an amount
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
