package settlement

import (
	"fmt"

	"bet-tracker/internal/mathutil"
	"bet-tracker/internal/odds"
)

// Entry is a tracked bet as the calculator sees it.
type Entry struct {
	Odds           odds.American
	Stake          float64
	Result         Result
	RecordedPayout float64 // 0 = not recorded
}

// Outcome holds every figure derived from one Entry.
type Outcome struct {
	ImpliedPct      float64 `json:"implied_pct"`
	DecimalOdds     float64 `json:"decimal_odds"`
	PotentialPayout float64 `json:"potential_payout"`
	NetProfit       float64 `json:"net_profit"`
}

// Settle derives the outcome of a single entry. Each figure is rounded as it is
// produced and the rounded potential payout is what feeds the profit calculation.
func Settle(e Entry) (Outcome, error) {
	impliedPct, err := odds.ImpliedWinPercentage(e.Odds)
	if err != nil {
		return Outcome{}, err
	}
	decimal, err := odds.DecimalOdds(e.Odds)
	if err != nil {
		return Outcome{}, err
	}
	potential, err := PotentialPayout(e.Odds, e.Stake)
	if err != nil {
		return Outcome{}, err
	}
	net, err := NetProfit(e.Result, e.Stake, e.RecordedPayout, potential)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		ImpliedPct:      impliedPct,
		DecimalOdds:     decimal,
		PotentialPayout: potential,
		NetProfit:       net,
	}, nil
}

// Summary aggregates a set of entries for the dashboard.
type Summary struct {
	Bets    int `json:"bets"`
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Pushes  int `json:"pushes"`
	Voids   int `json:"voids"`
	Pending int `json:"pending"`

	TotalStaked   float64 `json:"total_staked"`
	SettledStaked float64 `json:"settled_staked"` // stake on wins and losses only
	TotalReturned float64 `json:"total_returned"` // paid out on wins
	NetProfit     float64 `json:"net_profit"`
	WinRatePct    float64 `json:"win_rate_pct"` // wins / (wins + losses)
	ROIPct        float64 `json:"roi_pct"`      // net profit / settled stake
}

// Summarize settles every entry and totals the results.
// An invalid entry fails the whole summary with its index in the error.
func Summarize(entries []Entry) (Summary, error) {
	var s Summary

	for i, e := range entries {
		out, err := Settle(e)
		if err != nil {
			return Summary{}, fmt.Errorf("entry %d: %w", i, err)
		}

		s.Bets++
		s.TotalStaked = mathutil.Round2(s.TotalStaked + e.Stake)

		if e.Result.Settled() {
			s.SettledStaked = mathutil.Round2(s.SettledStaked + e.Stake)
		}

		switch e.Result {
		case Win:
			s.Wins++
			s.TotalReturned = mathutil.Round2(s.TotalReturned + e.Stake + out.NetProfit)
		case Loss:
			s.Losses++
		case Push:
			s.Pushes++
		case Void:
			s.Voids++
		default:
			s.Pending++
		}

		s.NetProfit = mathutil.Round2(s.NetProfit + out.NetProfit)
	}

	if decided := s.Wins + s.Losses; decided > 0 {
		s.WinRatePct = mathutil.Round2(float64(s.Wins) / float64(decided) * 100)
	}
	if s.SettledStaked > 0 {
		s.ROIPct = mathutil.Round2(s.NetProfit / s.SettledStaked * 100)
	}

	return s, nil
}
