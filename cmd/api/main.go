package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmm341/avocado-ledger/api/routes"
	"github.com/dmm341/avocado-ledger/internal/buyers"
	"github.com/dmm341/avocado-ledger/internal/dashboard"
	"github.com/dmm341/avocado-ledger/internal/farmers"
	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/config"
	"github.com/dmm341/avocado-ledger/pkg/db"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/metrics"
	"github.com/dmm341/avocado-ledger/pkg/migrate"
	"github.com/dmm341/avocado-ledger/pkg/outbox"
	"github.com/dmm341/avocado-ledger/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured; idempotency keys are ignored")
	}

	promRegistry := metrics.NewRegistry()
	conn := dbClient.DB()

	farmerSvc, err := farmers.NewService(farmers.NewRepository(conn), dbClient, logg)
	exitOnErr(logg, "failed to create farmers service", err)
	buyerSvc, err := buyers.NewService(buyers.NewRepository(conn), dbClient, logg)
	exitOnErr(logg, "failed to create buyers service", err)

	ledgerParams := ledger.ServiceParams{
		Repo:    ledger.NewRepository(conn),
		Tx:      dbClient,
		Metrics: metrics.NewLedgerMetrics(promRegistry),
		Logger:  logg,
	}
	if cfg.Eventing.OutboxEnabled {
		ledgerParams.Outbox = outbox.NewService(outbox.NewRepository(conn), logg)
	}
	ledgerSvc, err := ledger.NewService(ledgerParams)
	exitOnErr(logg, "failed to create ledger service", err)
	dashSvc, err := dashboard.NewService(dashboard.NewRepository(conn), logg)
	exitOnErr(logg, "failed to create dashboard service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": cfg.DB.Driver,
		"outbox": cfg.Eventing.OutboxEnabled,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Metrics:   metrics.Handler(promRegistry),
			Farmers:   farmerSvc,
			Buyers:    buyerSvc,
			Ledger:    ledgerSvc,
			Dashboard: dashSvc,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func exitOnErr(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
