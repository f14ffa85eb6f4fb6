package settlement

import (
	"errors"
	"fmt"

	"bet-tracker/internal/mathutil"
	"bet-tracker/internal/odds"
)

var (
	// ErrInvalidStake is returned for a stake that is not a positive finite number.
	ErrInvalidStake = errors.New("stake must be a positive amount")
	// ErrInvalidPayout is returned for a negative or non-finite payout.
	ErrInvalidPayout = errors.New("payout must be zero or a positive amount")
)

func validateStake(stake float64) error {
	if !mathutil.IsFinite(stake) || stake <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidStake, stake)
	}
	return nil
}

func validatePayout(payout float64) error {
	if !mathutil.IsFinite(payout) || payout < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidPayout, payout)
	}
	return nil
}

// PotentialPayout returns the total return (stake included) if the bet wins,
// rounded to 2 places.
// Example: +150 for 50 → 125.00
func PotentialPayout(price odds.American, stake float64) (float64, error) {
	if err := validateStake(stake); err != nil {
		return 0, err
	}
	decimal, err := odds.DecimalOdds(price)
	if err != nil {
		return 0, err
	}
	return mathutil.Round2(stake * decimal), nil
}

// NetProfit returns the signed profit or loss of a bet, rounded to 2 places.
//
// Win:  recordedPayout - stake when a payout was recorded, else potential - stake
// Loss: -stake
// anything else has no settled effect and returns 0
func NetProfit(result Result, stake, recordedPayout, potential float64) (float64, error) {
	if err := validateStake(stake); err != nil {
		return 0, err
	}
	if err := validatePayout(recordedPayout); err != nil {
		return 0, fmt.Errorf("recorded payout: %w", err)
	}
	if err := validatePayout(potential); err != nil {
		return 0, fmt.Errorf("potential payout: %w", err)
	}

	switch result {
	case Win:
		total := potential
		if recordedPayout > 0 {
			// Recorded payout is authoritative (promos, partial cash-outs, book rounding)
			total = recordedPayout
		}
		return mathutil.Round2(total - stake), nil
	case Loss:
		return mathutil.Round2(-stake), nil
	case Pending, Push, Void:
		return 0, nil
	default:
		return 0, nil
	}
}
