package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/api/routes"
	"github.com/mexilux/optica-backend/internal/cart"
	"github.com/mexilux/optica-backend/internal/catalog"
	"github.com/mexilux/optica-backend/internal/configurator"
	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/internal/prescriptions"
	"github.com/mexilux/optica-backend/pkg/config"
	"github.com/mexilux/optica-backend/pkg/db"
	"github.com/mexilux/optica-backend/pkg/logger"
	"github.com/mexilux/optica-backend/pkg/metrics"
	"github.com/mexilux/optica-backend/pkg/migrate"
	"github.com/mexilux/optica-backend/pkg/redis"
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

	rules := lens.DefaultPrescriptionRules()
	if tolerance, err := decimal.NewFromString(cfg.Wizard.PDToleranceMM); err == nil {
		rules.PDTolerance = tolerance
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	prescriptionsService, err := prescriptions.NewService(prescriptions.NewRepository(dbClient.DB()), rules)
	if err != nil {
		logg.Error(context.Background(), "failed to create prescriptions service", err)
		os.Exit(1)
	}

	configuratorService, err := configurator.NewService(configurator.ServiceParams{
		Logger:        logg,
		Repo:          configurator.NewRepository(dbClient.DB()),
		Catalog:       catalogService,
		Prescriptions: prescriptionsService,
		Locks:         redisClient,
		Metrics:       metrics.NewWizardMetrics(prometheus.DefaultRegisterer),
		Rules:         rules,
		Wizard:        cfg.Wizard,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create configurator service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(logg, cart.NewRepository(dbClient.DB()), dbClient, configuratorService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, catalogService, prescriptionsService, configuratorService, cartService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
