package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/loja1/projectohibrido/internal"
	"github.com/loja1/projectohibrido/internal/cookie"
	"github.com/loja1/projectohibrido/internal/events"
	"github.com/loja1/projectohibrido/internal/handler/api"
	"github.com/loja1/projectohibrido/internal/jobs"
	"github.com/loja1/projectohibrido/internal/middleware"
	"github.com/loja1/projectohibrido/internal/postgres"
	"github.com/loja1/projectohibrido/internal/router"
	"github.com/loja1/projectohibrido/internal/routes"
	"github.com/loja1/projectohibrido/internal/service"
	"github.com/loja1/projectohibrido/internal/telemetry"
	"github.com/loja1/projectohibrido/internal/worker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Error tracking and tracing
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	shutdownTracing, err := telemetry.InitTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracing initialization failed: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	// Run migrations over database/sql, then open the application pool
	logger.Info("Running database migrations...")
	if err := migrate(ctx, cfg.DatabaseUrl, logger); err != nil {
		return err
	}
	logger.Info("Database migrations completed successfully")

	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl, postgres.PoolConfig{MaxConnLifetime: time.Hour})
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(pool)

	// Domain events
	publisher, err := newPublisher(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("event publisher initialization failed: %w", err)
	}
	defer publisher.Close()

	// Initialize services
	businessMetrics := telemetry.InitBusinessMetrics("loja")
	deps := service.Deps{
		Store:     store,
		Logger:    logger,
		Metrics:   businessMetrics,
		Publisher: publisher,
	}

	cartService := service.NewCartService(deps)
	mergeService := service.NewCartMergeService(deps, cfg.Cart.MergeStrict)
	checkoutService := service.NewCheckoutService(deps)
	orderService := service.NewOrderService(deps)
	stockService := service.NewStockService(deps)
	movementService := service.NewStockMovementService(deps)
	logger.Info("Services initialized", "merge_strict", cfg.Cart.MergeStrict)

	// ==========================================================================
	// Initialize middleware and routes
	// ==========================================================================

	httpMetrics := middleware.NewMetrics("loja", nil)
	prod := cfg.Env == "prod"

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithUserID,
		telemetry.SentryMiddleware(),
		telemetry.WithHTTPRoute,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		httpMetrics.Middleware,
		middleware.SecurityHeaders(middleware.APISecurityHeadersConfig(prod)),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
	)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CartHandler:     api.NewCartHandler(cartService, mergeService, checkoutService, cookie.NewConfig(prod, cfg.Cart.AbandonAfter)),
		OrderHandler:    api.NewOrderHandler(orderService),
		StockHandler:    api.NewStockHandler(stockService, movementService),
		CheckoutLimiter: middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig()),
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		HealthHandler:  api.NewHealthHandler(store, logger),
		MetricsHandler: httpMetrics.Handler(),
	})

	// ==========================================================================
	// Background jobs
	// ==========================================================================

	if cfg.Cart.CleanupInterval > 0 {
		cleaner := jobs.NewAbandonedCartCleaner(store, cfg.Cart.AbandonAfter, businessMetrics, logger)
		w := worker.NewWorker(worker.Config{PollInterval: cfg.Cart.CleanupInterval}, logger, businessMetrics, cleaner)
		go func() {
			if err := w.Start(ctx); err != nil {
				logger.Error("Worker stopped", "error", err)
			}
		}()
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(r, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// migrate applies the embedded migrations through a short-lived
// database/sql handle, which is what goose requires.
func migrate(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := internal.RunMigrations(ctx, sqlDB, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// newPublisher picks the event broker named by the configuration.
func newPublisher(cfg internal.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.Driver {
	case "nats":
		logger.Info("Publishing events to NATS", "url", cfg.NATSURL, "prefix", cfg.SubjectPrefix)
		p, err := events.NewNATSPublisher(cfg.NATSURL, cfg.SubjectPrefix, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "kafka":
		logger.Info("Publishing events to Kafka", "brokers", cfg.KafkaBrokers)
		return events.NewKafkaPublisher(cfg.KafkaBrokers), nil
	default:
		logger.Info("Event publishing disabled")
		return events.Nop{}, nil
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
