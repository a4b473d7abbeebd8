package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Amount maps missing or non-numeric values to zero.
func Amount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds half away from zero to cents. Display only.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(Amount(v)).Round(2).InexactFloat64()
}

// VATAmount computes value*rate/100 rounded to cents.
func VATAmount(value, ratePercent float64) float64 {
	return decimal.NewFromFloat(Amount(value)).
		Mul(decimal.NewFromFloat(Amount(ratePercent))).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// AddAmounts sums two money values without float drift in the cents.
func AddAmounts(a, b float64) float64 {
	return decimal.NewFromFloat(Amount(a)).Add(decimal.NewFromFloat(Amount(b))).InexactFloat64()
}
