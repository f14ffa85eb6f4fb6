package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-tracker/internal/odds"
)

func TestSettleScenarios(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		expected Outcome
	}{
		{
			name:  "Pending -110 for 100",
			entry: Entry{Odds: -110, Stake: 100},
			expected: Outcome{
				ImpliedPct:      52.38,
				DecimalOdds:     1 + 100.0/110.0,
				PotentialPayout: 190.91,
				NetProfit:       0,
			},
		},
		{
			name:  "Win +150 for 50",
			entry: Entry{Odds: 150, Stake: 50, Result: Win},
			expected: Outcome{
				ImpliedPct:      40.00,
				DecimalOdds:     2.5,
				PotentialPayout: 125.00,
				NetProfit:       75.00,
			},
		},
		{
			name:  "Win +150 for 50 with recorded payout",
			entry: Entry{Odds: 150, Stake: 50, Result: Win, RecordedPayout: 130},
			expected: Outcome{
				ImpliedPct:      40.00,
				DecimalOdds:     2.5,
				PotentialPayout: 125.00,
				NetProfit:       80.00,
			},
		},
		{
			name:  "Loss -110 for 75",
			entry: Entry{Odds: -110, Stake: 75, Result: Loss},
			expected: Outcome{
				ImpliedPct:      52.38,
				DecimalOdds:     1 + 100.0/110.0,
				PotentialPayout: 143.18,
				NetProfit:       -75.00,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Settle(tt.entry)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.ImpliedPct, out.ImpliedPct)
			assert.InDelta(t, tt.expected.DecimalOdds, out.DecimalOdds, 1e-12)
			assert.Equal(t, tt.expected.PotentialPayout, out.PotentialPayout)
			assert.Equal(t, tt.expected.NetProfit, out.NetProfit)
		})
	}
}

func TestSettleRoundsEachStep(t *testing.T) {
	// 0.003 at even money: payout rounds to 0.01 first, so profit is 0.01.
	// Rounding once at the end would give 0.00.
	out, err := Settle(Entry{Odds: 100, Stake: 0.003, Result: Win})
	require.NoError(t, err)
	assert.Equal(t, 0.01, out.PotentialPayout)
	assert.Equal(t, 0.01, out.NetProfit)
}

func TestSettleInvalid(t *testing.T) {
	_, err := Settle(Entry{Odds: 0, Stake: 10})
	assert.ErrorIs(t, err, odds.ErrZeroOdds)

	_, err = Settle(Entry{Odds: -110, Stake: 0})
	assert.ErrorIs(t, err, ErrInvalidStake)

	_, err = Settle(Entry{Odds: -110, Stake: 10, Result: Win, RecordedPayout: -3})
	assert.ErrorIs(t, err, ErrInvalidPayout)
}

func TestSummarize(t *testing.T) {
	entries := []Entry{
		{Odds: 150, Stake: 50, Result: Win},
		{Odds: 150, Stake: 50, Result: Win, RecordedPayout: 130},
		{Odds: -110, Stake: 75, Result: Loss},
		{Odds: -110, Stake: 40, Result: Pending},
		{Odds: -110, Stake: 20, Result: Push},
	}

	s, err := Summarize(entries)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Bets)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 1, s.Pushes)
	assert.Equal(t, 0, s.Voids)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 235.0, s.TotalStaked)
	assert.Equal(t, 175.0, s.SettledStaked)
	assert.Equal(t, 255.0, s.TotalReturned)
	assert.Equal(t, 80.0, s.NetProfit)
	assert.Equal(t, 66.67, s.WinRatePct)
	assert.Equal(t, 45.71, s.ROIPct)
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)
}

func TestSummarizeOnlyPending(t *testing.T) {
	s, err := Summarize([]Entry{{Odds: 120, Stake: 10}, {Odds: -130, Stake: 15, Result: Void}})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Bets)
	assert.Equal(t, 25.0, s.TotalStaked)
	assert.Zero(t, s.SettledStaked)
	assert.Zero(t, s.WinRatePct)
	assert.Zero(t, s.ROIPct)
	assert.Zero(t, s.NetProfit)
}

func TestSummarizeReportsBadEntry(t *testing.T) {
	_, err := Summarize([]Entry{{Odds: 150, Stake: 10}, {Odds: 0, Stake: 10}})
	require.Error(t, err)
	assert.ErrorIs(t, err, odds.ErrZeroOdds)
	assert.Contains(t, err.Error(), "entry 1")
}
