package settlement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-tracker/internal/mathutil"
	"bet-tracker/internal/odds"
)

func TestPotentialPayout(t *testing.T) {
	tests := []struct {
		name     string
		odds     odds.American
		stake    float64
		expected float64
	}{
		{"Standard -110 for 100", -110, 100, 190.91},
		{"Underdog +150 for 50", 150, 50, 125.00},
		{"Even money for 20", 100, 20, 40.00},
		{"Favorite -200 for 30", -200, 30, 45.00},
		{"Favorite -150 for 10", -150, 10, 16.67},
		{"Longshot +1200 for 5", 1200, 5, 65.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := PotentialPayout(tt.odds, tt.stake)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPotentialPayoutMatchesDecimalOdds(t *testing.T) {
	for _, o := range []odds.American{-350, -110, -100, 100, 105, 250, 900} {
		for _, s := range []float64{1, 7.5, 33.33, 100, 1234.56} {
			decimal, err := odds.DecimalOdds(o)
			require.NoError(t, err)

			payout, err := PotentialPayout(o, s)
			require.NoError(t, err)
			assert.Equal(t, mathutil.Round2(s*decimal), payout, "odds %v stake %v", o, s)
			assert.GreaterOrEqual(t, payout, mathutil.Round2(s))
		}
	}
}

func TestPotentialPayoutInvalid(t *testing.T) {
	_, err := PotentialPayout(0, 50)
	assert.ErrorIs(t, err, odds.ErrZeroOdds)

	_, err = PotentialPayout(-110, 0)
	assert.ErrorIs(t, err, ErrInvalidStake)

	_, err = PotentialPayout(-110, -5)
	assert.ErrorIs(t, err, ErrInvalidStake)

	_, err = PotentialPayout(-110, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidStake)
}

func TestNetProfit(t *testing.T) {
	tests := []struct {
		name      string
		result    Result
		stake     float64
		recorded  float64
		potential float64
		expected  float64
	}{
		{"Win uses potential", Win, 50, 0, 125, 75.00},
		{"Win recorded overrides potential", Win, 50, 130, 125, 80.00},
		{"Win recorded below potential", Win, 50, 110, 125, 60.00},
		{"Win -110 for 100", Win, 100, 0, 190.91, 90.91},
		{"Loss forfeits stake", Loss, 75, 0, 142.5, -75.00},
		{"Loss ignores recorded payout", Loss, 75, 200, 142.5, -75.00},
		{"Pending has no effect", Pending, 40, 0, 76.36, 0},
		{"Push has no effect", Push, 40, 40, 76.36, 0},
		{"Void has no effect", Void, 40, 0, 76.36, 0},
		{"Out of range result has no effect", Result(42), 40, 0, 76.36, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NetProfit(tt.result, tt.stake, tt.recorded, tt.potential)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNetProfitLossIsNegativeStake(t *testing.T) {
	for _, s := range []float64{0.01, 1, 40, 75, 99.99, 1000.5} {
		result, err := NetProfit(Loss, s, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, -s, result)
	}
}

func TestNetProfitInvalid(t *testing.T) {
	tests := []struct {
		name      string
		stake     float64
		recorded  float64
		potential float64
		wantErr   error
	}{
		{"Zero stake", 0, 0, 10, ErrInvalidStake},
		{"Negative stake", -10, 0, 10, ErrInvalidStake},
		{"Infinite stake", math.Inf(1), 0, 10, ErrInvalidStake},
		{"Negative recorded payout", 10, -1, 20, ErrInvalidPayout},
		{"NaN recorded payout", 10, math.NaN(), 20, ErrInvalidPayout},
		{"Negative potential", 10, 0, -20, ErrInvalidPayout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Validation applies whatever the result is
			for _, r := range []Result{Win, Loss, Pending} {
				_, err := NetProfit(r, tt.stake, tt.recorded, tt.potential)
				assert.ErrorIs(t, err, tt.wantErr, "result %s", r)
			}
		})
	}
}
