package odds

import "bet-tracker/internal/mathutil"

// RemoveVig returns the no-vig probabilities for the two sides of a market.
//
// Method: multiplicative (proportional)
// fairA = impliedA / (impliedA + impliedB)
// fairB = impliedB / (impliedA + impliedB)
func RemoveVig(a, b American) (float64, float64, error) {
	impliedA, err := ImpliedProbability(a)
	if err != nil {
		return 0, 0, err
	}
	impliedB, err := ImpliedProbability(b)
	if err != nil {
		return 0, 0, err
	}

	total := impliedA + impliedB
	return impliedA / total, impliedB / total, nil
}

// Overround returns the bookmaker margin of a two-way market as a percentage
// rounded to 2 places. A -110/-110 market carries 4.76.
func Overround(a, b American) (float64, error) {
	impliedA, err := ImpliedProbability(a)
	if err != nil {
		return 0, err
	}
	impliedB, err := ImpliedProbability(b)
	if err != nil {
		return 0, err
	}
	return mathutil.Round2((impliedA + impliedB - 1) * 100), nil
}
