package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/multierr"

	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/angelmondragon/wishlist-backend/pkg/db"
	"github.com/angelmondragon/wishlist-backend/pkg/instance"
	"github.com/angelmondragon/wishlist-backend/pkg/kafka"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/metrics"
	"github.com/angelmondragon/wishlist-backend/pkg/migrate"
	"github.com/angelmondragon/wishlist-backend/pkg/outbox"
	"github.com/angelmondragon/wishlist-backend/pkg/pubsub"
)

const serviceName = "outbox-publisher"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"transport": cfg.Outbox.NormalizedTransport(),
		"instance":  instance.GetID(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	transport, err := newTransport(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap outbox transport", err)
		_ = dbClient.Close()
		os.Exit(1)
	}
	breaker := outbox.NewBreakerTransport(transport, outbox.BreakerSettings{
		Name:                cfg.Outbox.NormalizedTransport(),
		ConsecutiveFailures: cfg.Outbox.BreakerFailures,
		OpenTimeout:         cfg.Outbox.BreakerOpenDelay,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logg.Warn(logg.WithFields(ctx, map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}), "outbox breaker state changed")
		},
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Transport:  breaker,
		Repository: outbox.NewRepository(dbClient.DB()),
		Metrics:    metrics.NewOutboxMetrics(registry),
	})
	if err != nil {
		logg.Error(ctx, "failed to create outbox publisher", err)
		os.Exit(1)
	}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	logg.Info(ctx, "starting outbox publisher")
	runErr := service.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	closeErr := multierr.Combine(
		metricsServer.Shutdown(shutdownCtx),
		breaker.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "outbox publisher shutdown incomplete", closeErr)
	}
	if (runErr != nil && !errors.Is(runErr, context.Canceled)) || closeErr != nil {
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shut down gracefully")
}

func newTransport(ctx context.Context, cfg *config.Config, logg *logger.Logger) (outbox.Transport, error) {
	switch cfg.Outbox.NormalizedTransport() {
	case config.OutboxTransportPubSub:
		return pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	case config.OutboxTransportKafka:
		return kafka.NewProducer(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unsupported outbox transport %q", cfg.Outbox.Transport)
	}
}
