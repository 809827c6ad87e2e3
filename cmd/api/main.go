package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kingsofalchemy/ordertracker-backend/api/controllers"
	"github.com/kingsofalchemy/ordertracker-backend/api/routes"
	"github.com/kingsofalchemy/ordertracker-backend/internal/aggregator"
	"github.com/kingsofalchemy/ordertracker-backend/internal/catalog"
	"github.com/kingsofalchemy/ordertracker-backend/internal/etsy"
	"github.com/kingsofalchemy/ordertracker-backend/internal/shopify"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/db"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	readiness := map[string]controllers.Pinger{}

	var catalogRepo controllers.CatalogLoader
	if cfg.Catalog.DSN != "" {
		dbClient, err := db.New(context.Background(), cfg.Catalog, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap catalog database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing catalog database", err)
			}
		}()
		repo, err := catalog.NewRepository(dbClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create catalog repository", err)
			os.Exit(1)
		}
		catalogRepo = repo
		readiness["catalog_db"] = dbClient
	} else {
		logg.Warn(context.Background(), "catalog DSN not set; orders will be served without cost figures")
	}

	var snapshot controllers.SnapshotStore
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		store, err := aggregator.NewSnapshotStore(redisClient, cfg.Poll.SnapshotTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create snapshot store", err)
			os.Exit(1)
		}
		snapshot = store
		readiness["redis"] = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured; every request fetches live")
	}

	shopifyClient, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	tokenSource, err := etsy.NewTokenSource(cfg.Etsy, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create etsy token source", err)
		os.Exit(1)
	}

	etsyClient, err := etsy.NewClient(cfg.Etsy, tokenSource, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create etsy client", err)
		os.Exit(1)
	}

	fetcher, err := aggregator.NewService(aggregator.Params{
		Shopify: shopifyClient,
		Etsy:    etsyClient,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create aggregator", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, fetcher, snapshot, catalogRepo, tokenSource, readiness),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
