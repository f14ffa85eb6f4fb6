package mathutil

import (
	"math"

	"github.com/shopspring/decimal"
)

// Cents is the number of decimal places every money and percentage figure is kept at.
const Cents = 2

// Round2 rounds v to two decimal places, half away from zero.
// Rounding is done on the shortest decimal representation of v, so values such as
// 1.005 (stored as 1.00499999...) round to 1.01 the way a person reading them would.
func Round2(v float64) float64 {
	return Round(v, Cents)
}

// Round rounds v to the given number of decimal places, half away from zero.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
