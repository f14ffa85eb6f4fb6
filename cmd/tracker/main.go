package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"bet-tracker/internal/config"
	"bet-tracker/internal/feed"
	"bet-tracker/internal/ledger"
	"bet-tracker/internal/logger"
	"bet-tracker/internal/server"
)

func main() {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lg, err := logger.New("bet-tracker", cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}

	err = run(cfg, lg)
	if err != nil {
		lg.Error("tracker stopped", zap.Error(err))
	}
	_ = lg.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until SIGINT/SIGTERM. Every resource it opens is closed before it returns.
func run(cfg config.Config, lg *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := ledger.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", cfg.DBPath, err)
	}
	defer db.Close()

	var lines server.LinesSource
	if cfg.FeedEnabled() {
		client, closeCache := newFeed(ctx, cfg, lg)
		defer closeCache()
		lines = client
	} else {
		lg.Info("odds feed disabled (FEED_URL not set)")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := server.New(db, lines, lg, reg)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.Router(reg),
	}

	serveErr := make(chan error, 1)
	go func() {
		lg.Info("listening", zap.String("addr", srv.Addr), zap.String("db", cfg.DBPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received, stopping...")

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownDeadline)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
	}

	lg.Info("stopped gracefully")
	return nil
}

// newFeed builds the odds feed client, caching in Redis when configured and
// falling back to an in-process cache otherwise. The returned func releases the cache.
func newFeed(ctx context.Context, cfg config.Config, lg *zap.Logger) (*feed.Client, func()) {
	var cache feed.Cache = feed.NewMemoryCache()
	closeCache := func() {}

	if cfg.RedisAddr != "" {
		rc, err := feed.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			lg.Warn("redis unavailable, using in-process feed cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			lg.Info("feed cache on redis", zap.String("addr", cfg.RedisAddr))
			cache = rc
			closeCache = func() {
				if err := rc.Close(); err != nil {
					lg.Warn("closing redis feed cache", zap.Error(err))
				}
			}
		}
	}

	httpClient := feed.NewRateLimitedClient(cfg.FeedRateLimit, cfg.FeedTimeout, cfg.FeedMaxRetries)
	lg.Info("odds feed enabled", zap.String("url", cfg.FeedURL), zap.Duration("cache_ttl", cfg.FeedCacheTTL))
	client := feed.NewClient(cfg.FeedURL, cfg.FeedAPIKey, httpClient, cache, cfg.FeedCacheTTL, lg.Named("feed"))
	return client, closeCache
}
