package main

import (
	"context"
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wifstudio/catalog-mirror/internal/airtable"
	"github.com/wifstudio/catalog-mirror/internal/mirror"
	"github.com/wifstudio/catalog-mirror/pkg/config"
	"github.com/wifstudio/catalog-mirror/pkg/db"
	"github.com/wifstudio/catalog-mirror/pkg/logger"
	"github.com/wifstudio/catalog-mirror/pkg/metrics"
	"github.com/wifstudio/catalog-mirror/pkg/migrate"
	"github.com/wifstudio/catalog-mirror/pkg/redis"
)

const lockKey = "catalog:sync:lock"

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.Service.NameOr("sync"),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithRunID(context.Background(), uuid.NewString())

	if err := cfg.Airtable.Validate(); err != nil {
		logg.Error(ctx, "missing airtable credentials", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	source, err := airtable.NewClient(cfg.Airtable)
	if err != nil {
		logg.Error(ctx, "failed to build airtable client", err)
		os.Exit(1)
	}

	var lock mirror.RunLock
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()

		lock, err = mirror.NewRedisLock(redisClient, lockKey, cfg.Sync.LockTTL)
		if err != nil {
			logg.Error(ctx, "failed to build run lock", err)
			os.Exit(1)
		}
	}

	repo := mirror.NewRepository()
	reconciler, err := mirror.NewReconciler(mirror.ReconcilerParams{
		Store:  repo,
		Media:  mirror.NewMediaMaterializer(cfg.Media),
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build reconciler", err)
		os.Exit(1)
	}

	linker, err := mirror.NewLinker(mirror.LinkerParams{Store: repo, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to build linker", err)
		os.Exit(1)
	}

	service, err := mirror.NewService(mirror.ServiceParams{
		Logger:          logg,
		Source:          source,
		DB:              dbClient,
		Reconciler:      reconciler,
		Linker:          linker,
		Metrics:         metrics.NewSyncMetrics(prometheus.NewRegistry()),
		Lock:            lock,
		ItemsTable:      cfg.Airtable.ItemsTable,
		AttributesTable: cfg.Airtable.AttributesTable,
	})
	if err != nil {
		logg.Error(ctx, "failed to build sync service", err)
		os.Exit(1)
	}

	if _, err := service.Run(ctx); err != nil {
		if errors.Is(err, mirror.ErrRunInProgress) {
			logg.Warn(ctx, "another sync run holds the lock, skipping")
			return
		}
		logg.Error(ctx, "sync run failed", err)
		os.Exit(1)
	}
}
