// Package money holds the currency arithmetic shared by every invoice computation.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for currency amounts.
const Places = 2

// ErrNotFinite is returned when a float amount is NaN or infinite.
var ErrNotFinite = errors.New("amount is not a finite number")

// Round2 rounds an amount to 2 decimal places, half away from zero.
// It is the only place where money values are truncated.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// FromFloat converts a float to a decimal, rejecting NaN and ±Inf.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrNotFinite
	}
	return decimal.NewFromFloat(f), nil
}

// Sum adds amounts, rounding the running total after every step.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = Round2(total.Add(a))
	}
	return total
}

// Format renders an amount with exactly 2 fractional digits ("1230.00").
func Format(d decimal.Decimal) string {
	return Round2(d).StringFixed(Places)
}
