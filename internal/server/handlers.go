package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bet-tracker/internal/ledger"
	"bet-tracker/internal/mathutil"
	"bet-tracker/internal/odds"
	"bet-tracker/internal/settlement"
)

// OddsView is the response of GET /api/odds
type OddsView struct {
	American        odds.American `json:"american"`
	ImpliedPct      float64       `json:"implied_pct"`
	DecimalOdds     float64       `json:"decimal_odds"`
	Stake           float64       `json:"stake,omitempty"`
	PotentialPayout float64       `json:"potential_payout,omitempty"`
}

// LineView is a feed line with derived figures
type LineView struct {
	EventID     string        `json:"event_id"`
	Event       string        `json:"event"`
	Selection   string        `json:"selection"`
	Sportsbook  string        `json:"sportsbook"`
	Odds        odds.American `json:"odds"`
	ImpliedPct  float64       `json:"implied_pct"`
	DecimalOdds float64       `json:"decimal_odds"`

	// Set only when the line is one side of a two-way market at the same book
	FairPct      *float64 `json:"fair_pct,omitempty"`
	OverroundPct *float64 `json:"overround_pct,omitempty"`
}

// BetView is a stored bet with its settlement figures
type BetView struct {
	ledger.Bet
	settlement.Outcome
}

// CreateBetRequest is the body of POST /api/bets
type CreateBetRequest struct {
	EventID        string            `json:"event_id"`
	Event          string            `json:"event"`
	Selection      string            `json:"selection"`
	Sportsbook     string            `json:"sportsbook"`
	Odds           odds.American     `json:"odds"`
	Stake          float64           `json:"stake"`
	Result         settlement.Result `json:"result"`
	RecordedPayout float64           `json:"recorded_payout"`
}

// SettleRequest is the body of POST /api/bets/{id}/settle
type SettleRequest struct {
	Result settlement.Result `json:"result"`
	Payout float64           `json:"payout"`
}

func parseFloatParam(r *http.Request, name string) (float64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, true, nil
}

func (a *API) convertOdds(w http.ResponseWriter, r *http.Request) {
	american, ok, err := parseFloatParam(r, "american")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("american is required"))
		return
	}

	view := OddsView{American: odds.American(american)}

	if view.ImpliedPct, err = odds.ImpliedWinPercentage(view.American); err != nil {
		a.reject(w, err)
		return
	}
	if view.DecimalOdds, err = odds.DecimalOdds(view.American); err != nil {
		a.reject(w, err)
		return
	}
	a.metrics.calculations.WithLabelValues("conversion").Inc()

	stake, ok, err := parseFloatParam(r, "stake")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if ok {
		payout, err := settlement.PotentialPayout(view.American, stake)
		if err != nil {
			a.reject(w, err)
			return
		}
		view.Stake = stake
		view.PotentialPayout = payout
		a.metrics.calculations.WithLabelValues("payout").Inc()
	}

	writeJSON(w, http.StatusOK, view)
}

func (a *API) listLines(w http.ResponseWriter, r *http.Request) {
	if a.lines == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("odds feed not configured"))
		return
	}

	lines, err := a.lines.Lines(r.Context())
	if err != nil {
		a.log.Error("fetching lines", zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}

	views := make([]LineView, 0, len(lines))
	for _, l := range lines {
		implied, err := odds.ImpliedWinPercentage(l.Odds)
		if err != nil {
			a.log.Warn("skipping feed line with bad odds",
				zap.String("event_id", l.EventID),
				zap.String("selection", l.Selection),
				zap.Error(err))
			continue
		}
		decimal, err := odds.DecimalOdds(l.Odds)
		if err != nil {
			a.log.Warn("skipping feed line with bad odds",
				zap.String("event_id", l.EventID),
				zap.String("selection", l.Selection),
				zap.Error(err))
			continue
		}
		views = append(views, LineView{
			EventID:     l.EventID,
			Event:       l.Event,
			Selection:   l.Selection,
			Sportsbook:  l.Sportsbook,
			Odds:        l.Odds,
			ImpliedPct:  implied,
			DecimalOdds: decimal,
		})
	}
	a.metrics.calculations.WithLabelValues("conversion").Add(float64(len(views)))

	if err := addFairPrices(views); err != nil {
		a.reject(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// addFairPrices fills the no-vig probability and book margin for every market
// (event at one sportsbook) quoted on exactly two sides.
func addFairPrices(views []LineView) error {
	type market struct{ eventID, book string }
	sides := make(map[market][]int)
	for i, v := range views {
		k := market{v.EventID, v.Sportsbook}
		sides[k] = append(sides[k], i)
	}

	for _, idx := range sides {
		if len(idx) != 2 {
			continue
		}
		a, b := &views[idx[0]], &views[idx[1]]

		fairA, fairB, err := odds.RemoveVig(a.Odds, b.Odds)
		if err != nil {
			return err
		}
		margin, err := odds.Overround(a.Odds, b.Odds)
		if err != nil {
			return err
		}

		pctA, pctB := mathutil.Round2(fairA*100), mathutil.Round2(fairB*100)
		marginA, marginB := margin, margin
		a.FairPct, a.OverroundPct = &pctA, &marginA
		b.FairPct, b.OverroundPct = &pctB, &marginB
	}
	return nil
}

func (a *API) betView(b ledger.Bet) (BetView, error) {
	out, err := settlement.Settle(b.Entry())
	if err != nil {
		return BetView{}, fmt.Errorf("bet %s: %w", b.ID, err)
	}
	a.metrics.calculations.WithLabelValues("settlement").Inc()
	return BetView{Bet: b, Outcome: out}, nil
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	var (
		bets []ledger.Bet
		err  error
	)
	if raw := r.URL.Query().Get("result"); raw != "" {
		bets, err = a.store.ListByResult(r.Context(), settlement.ParseResult(raw))
	} else {
		bets, err = a.store.List(r.Context())
	}
	if err != nil {
		a.reject(w, err)
		return
	}

	views := make([]BetView, 0, len(bets))
	for _, b := range bets {
		v, err := a.betView(b)
		if err != nil {
			a.reject(w, err)
			return
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, views)
}

func (a *API) createBet(w http.ResponseWriter, r *http.Request) {
	var req CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return
	}
	if req.Event == "" || req.Selection == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("event and selection are required"))
		return
	}

	b, err := a.store.Add(r.Context(), ledger.Bet{
		EventID:        req.EventID,
		Event:          req.Event,
		Selection:      req.Selection,
		Sportsbook:     req.Sportsbook,
		Odds:           req.Odds,
		Stake:          req.Stake,
		Result:         req.Result,
		RecordedPayout: req.RecordedPayout,
	})
	if err != nil {
		a.reject(w, err)
		return
	}

	v, err := a.betView(b)
	if err != nil {
		a.reject(w, err)
		return
	}
	a.log.Info("bet tracked",
		zap.String("id", b.ID),
		zap.String("selection", b.Selection),
		zap.Float64("odds", float64(b.Odds)),
		zap.Float64("stake", b.Stake))

	writeJSON(w, http.StatusCreated, v)
}

func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := a.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.reject(w, err)
		return
	}

	v, err := a.betView(b)
	if err != nil {
		a.reject(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) settleBet(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return
	}

	b, err := a.store.Settle(r.Context(), chi.URLParam(r, "id"), req.Result, req.Payout)
	if err != nil {
		a.reject(w, err)
		return
	}

	v, err := a.betView(b)
	if err != nil {
		a.reject(w, err)
		return
	}
	a.log.Info("bet settled",
		zap.String("id", b.ID),
		zap.Stringer("result", b.Result),
		zap.Float64("net_profit", v.NetProfit))

	writeJSON(w, http.StatusOK, v)
}

func (a *API) deleteBet(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.reject(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) summary(w http.ResponseWriter, r *http.Request) {
	bets, err := a.store.List(r.Context())
	if err != nil {
		a.reject(w, err)
		return
	}

	s, err := settlement.Summarize(ledger.Entries(bets))
	if err != nil {
		a.reject(w, err)
		return
	}
	a.metrics.calculations.WithLabelValues("summary").Inc()

	writeJSON(w, http.StatusOK, s)
}
