package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/config"
	"github.com/edvin/swiftwheelz/internal/content"
	"github.com/edvin/swiftwheelz/internal/core"
	"github.com/edvin/swiftwheelz/internal/db"
	"github.com/edvin/swiftwheelz/internal/images"
	"github.com/edvin/swiftwheelz/internal/logging"
	"github.com/edvin/swiftwheelz/internal/metrics"
	"github.com/edvin/swiftwheelz/internal/web"
)

const pruneInterval = 10 * time.Minute

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		if cfg.DatabaseURL == "" {
			logger.Fatal().Msg("-migrate needs DATABASE_URL")
		}
		logger.Info().Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := web.Deps{}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if pool != nil {
		defer pool.Close()
		metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)
		deps.Payments = core.NewPaymentCacheService(pool, cfg.PendingPaymentTTL)
		deps.DB = pool
		logger.Info().Msg("pending payments stored in postgres")
	} else {
		deps.Payments = core.NewMemoryPaymentCache(cfg.PendingPaymentTTL)
		logger.Warn().Msg("DATABASE_URL not set, pending payments kept in memory")
	}

	tlsConfig, err := cfg.BackendTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure backend TLS")
	}
	if tlsConfig != nil {
		logger.Info().Msg("backend mTLS enabled")
	}
	deps.Backend = backend.NewClient(cfg.BackendAPIURL, cfg.BackendAPIKey, cfg.BackendTimeout, tlsConfig)
	deps.Auth = core.NewAuthService(deps.Backend, cfg.SessionSecret, cfg.SessionTTL, cfg.QuoteTTL)
	deps.Quotes = core.NewQuoteCalculator(cfg.MaxRentalDays, cfg.DepositPercent)

	if cfg.S3Enabled() {
		deps.Images = images.NewStore(images.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	} else {
		deps.Images = images.NewDisabledStore()
		logger.Info().Msg("S3 not configured, truck images disabled")
	}

	deps.Site, err = content.Load(cfg.ContentFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load site content")
	}

	srv, err := web.NewServer(logger, cfg, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create server")
	}

	go prunePendingPayments(ctx, logger, deps.Payments)

	var metricsServer *http.Server
	if cfg.MetricsListenAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsListenAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting web server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		metricsServer.Shutdown(shutdownCtx)
	}
}

// prunePendingPayments drops expired pending payments until ctx is done.
func prunePendingPayments(ctx context.Context, logger zerolog.Logger, cache core.PaymentCache) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cache.Prune(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("prune pending payments")
				continue
			}
			if n > 0 {
				logger.Info().Int64("removed", n).Msg("pruned expired pending payments")
			}
		}
	}
}
