package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gemcircle/gemcircle-backend/api/routes"
	"github.com/gemcircle/gemcircle-backend/internal/grouppurchases"
	"github.com/gemcircle/gemcircle-backend/internal/notifications"
	"github.com/gemcircle/gemcircle-backend/pkg/config"
	"github.com/gemcircle/gemcircle-backend/pkg/db"
	"github.com/gemcircle/gemcircle-backend/pkg/logger"
	"github.com/gemcircle/gemcircle-backend/pkg/metrics"
	"github.com/gemcircle/gemcircle-backend/pkg/migrate"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox"
	"github.com/gemcircle/gemcircle-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	purchaseMetrics := metrics.NewGroupPurchaseMetrics(prometheus.DefaultRegisterer)

	purchaseService, err := grouppurchases.NewService(
		grouppurchases.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		logg,
		purchaseMetrics,
		cfg.GroupPurchase.MaxConflictRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create group purchase service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, purchaseService, notificationsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
