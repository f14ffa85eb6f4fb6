package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bet-tracker/internal/feed"
	"bet-tracker/internal/ledger"
	"bet-tracker/internal/odds"
	"bet-tracker/internal/settlement"
)

// Store is the bet ledger the API reads and writes
type Store interface {
	Add(ctx context.Context, b ledger.Bet) (ledger.Bet, error)
	Get(ctx context.Context, id string) (ledger.Bet, error)
	List(ctx context.Context) ([]ledger.Bet, error)
	ListByResult(ctx context.Context, result settlement.Result) ([]ledger.Bet, error)
	Settle(ctx context.Context, id string, result settlement.Result, payout float64) (ledger.Bet, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// LinesSource supplies current odds lines
type LinesSource interface {
	Lines(ctx context.Context) ([]feed.Line, error)
}

// API serves the tracker's JSON endpoints
type API struct {
	store   Store
	lines   LinesSource // nil when no feed is configured
	log     *zap.Logger
	metrics *metrics
}

type metrics struct {
	requests     *prometheus.CounterVec
	calculations *prometheus.CounterVec
	rejected     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_calculations_total",
			Help: "Wagering calculations served by kind",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_rejected_inputs_total",
			Help: "Calculations rejected for invalid input by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.requests, m.calculations, m.rejected)
	return m
}

// New creates the API. lines may be nil. reg receives the API's metrics.
func New(store Store, lines LinesSource, log *zap.Logger, reg prometheus.Registerer) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		store:   store,
		lines:   lines,
		log:     log,
		metrics: newMetrics(reg),
	}
}

// Router returns the HTTP handler. gatherer backs /metrics.
func (a *API) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.instrument)

	r.Get("/health", a.health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/odds", a.convertOdds)
		r.Get("/lines", a.listLines)
		r.Get("/summary", a.summary)

		r.Get("/bets", a.listBets)
		r.Post("/bets", a.createBet)
		r.Get("/bets/{id}", a.getBet)
		r.Post("/bets/{id}/settle", a.settleBet)
		r.Delete("/bets/{id}", a.deleteBet)
	})

	return r
}

func (a *API) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		a.metrics.requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		a.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// reject answers 400 for calculator contract violations and 500 for anything else
func (a *API) reject(w http.ResponseWriter, err error) {
	reason := ""
	switch {
	case errors.Is(err, odds.ErrZeroOdds):
		reason = "zero_odds"
	case errors.Is(err, odds.ErrInvalidOdds):
		reason = "invalid_odds"
	case errors.Is(err, settlement.ErrInvalidStake):
		reason = "invalid_stake"
	case errors.Is(err, settlement.ErrInvalidPayout):
		reason = "invalid_payout"
	}

	if reason != "" {
		a.metrics.rejected.WithLabelValues(reason).Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if errors.Is(err, ledger.ErrBetNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}

	a.log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
