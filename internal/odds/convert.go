package odds

import (
	"errors"
	"fmt"
	"math"

	"bet-tracker/internal/mathutil"
)

// American is a price in American format.
// Negative values are favorites (stake needed to win 100), positive values are
// underdogs (profit on a 100 stake).
type American float64

var (
	// ErrZeroOdds is returned for odds of 0, which have no American meaning.
	ErrZeroOdds = errors.New("american odds cannot be zero")
	// ErrInvalidOdds is returned for non-finite odds or odds strictly between -100 and +100.
	ErrInvalidOdds = errors.New("invalid american odds")
)

// Validate checks the precondition shared by every conversion.
func Validate(odds American) error {
	v := float64(odds)
	if v == 0 {
		return ErrZeroOdds
	}
	if !mathutil.IsFinite(v) {
		return fmt.Errorf("%w: %v", ErrInvalidOdds, v)
	}
	if math.Abs(v) < 100 {
		return fmt.Errorf("%w: %v is between -100 and +100", ErrInvalidOdds, v)
	}
	return nil
}

// ImpliedProbability converts American odds to the break-even win probability.
// Example: -150 → 0.6, +150 → 0.4
func ImpliedProbability(odds American) (float64, error) {
	if err := Validate(odds); err != nil {
		return 0, err
	}

	v := float64(odds)
	if v > 0 {
		// Underdog: 100 / (odds + 100)
		return 100.0 / (v + 100.0), nil
	}
	// Favorite: |odds| / (|odds| + 100)
	abs := math.Abs(v)
	return abs / (abs + 100.0), nil
}

// ImpliedWinPercentage is ImpliedProbability as a percentage rounded to 2 places.
// Example: -110 → 52.38
func ImpliedWinPercentage(odds American) (float64, error) {
	p, err := ImpliedProbability(odds)
	if err != nil {
		return 0, err
	}
	return mathutil.Round2(p * 100), nil
}

// DecimalOdds converts American odds to the total-return multiplier.
// Example: +150 → 2.5, -110 → 1.909...
func DecimalOdds(odds American) (float64, error) {
	if err := Validate(odds); err != nil {
		return 0, err
	}

	v := float64(odds)
	if v > 0 {
		return 1.0 + v/100.0, nil
	}
	return 1.0 + 100.0/math.Abs(v), nil
}
