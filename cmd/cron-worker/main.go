package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/kingsofalchemy/ordertracker-backend/internal/aggregator"
	"github.com/kingsofalchemy/ordertracker-backend/internal/cron"
	"github.com/kingsofalchemy/ordertracker-backend/internal/etsy"
	"github.com/kingsofalchemy/ordertracker-backend/internal/shopify"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/metrics"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	shopifyClient, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		logg.Error(ctx, "failed to create shopify client", err)
		os.Exit(1)
	}

	tokenSource, err := etsy.NewTokenSource(cfg.Etsy, logg)
	if err != nil {
		logg.Error(ctx, "failed to create etsy token source", err)
		os.Exit(1)
	}

	etsyClient, err := etsy.NewClient(cfg.Etsy, tokenSource, logg)
	if err != nil {
		logg.Error(ctx, "failed to create etsy client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	fetchMetrics := metrics.NewFetchMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	fetcher, err := aggregator.NewService(aggregator.Params{
		Shopify: shopifyClient,
		Etsy:    etsyClient,
		Logger:  logg,
		Metrics: fetchMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create aggregator", err)
		os.Exit(1)
	}

	snapshot, err := aggregator.NewSnapshotStore(redisClient, cfg.Poll.SnapshotTTL)
	if err != nil {
		logg.Error(ctx, "failed to create snapshot store", err)
		os.Exit(1)
	}

	refreshJob, err := cron.NewSnapshotRefreshJob(cron.SnapshotRefreshParams{
		Fetcher:  fetcher,
		Snapshot: snapshot,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create refresh job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("orders"), cfg.Poll.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(refreshJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Poll.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create worker service", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Poll.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Poll.Interval.String(),
	})
	logg.Info(runCtx, "starting snapshot worker")

	if err := service.Run(ctx); err != nil && err != context.Canceled {
		logg.Error(runCtx, "worker stopped unexpectedly", err)
	}

	shutdownErr := multierr.Combine(
		metricsServer.Shutdown(context.Background()),
		redisClient.Close(),
	)
	if shutdownErr != nil {
		logg.Error(runCtx, "shutdown cleanup failed", shutdownErr)
		os.Exit(1)
	}
	logg.Info(runCtx, "worker shut down cleanly")
}
