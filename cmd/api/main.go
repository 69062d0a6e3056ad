package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/northquay/stocktrail-backend/api/routes"
	"github.com/northquay/stocktrail-backend/internal/audit"
	"github.com/northquay/stocktrail-backend/internal/backup"
	"github.com/northquay/stocktrail-backend/internal/bookings"
	"github.com/northquay/stocktrail-backend/internal/catalog"
	"github.com/northquay/stocktrail-backend/internal/ledger"
	"github.com/northquay/stocktrail-backend/internal/locations"
	"github.com/northquay/stocktrail-backend/internal/movements"
	"github.com/northquay/stocktrail-backend/internal/reasons"
	"github.com/northquay/stocktrail-backend/internal/reports"
	"github.com/northquay/stocktrail-backend/pkg/config"
	"github.com/northquay/stocktrail-backend/pkg/db"
	"github.com/northquay/stocktrail-backend/pkg/logger"
	"github.com/northquay/stocktrail-backend/pkg/metrics"
	"github.com/northquay/stocktrail-backend/pkg/migrate"
	"github.com/northquay/stocktrail-backend/pkg/redis"
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

	gdb := dbClient.DB()
	itemsRepo := catalog.NewRepository(gdb)
	placesRepo := locations.NewRepository(gdb)
	stockRepo := ledger.NewRepository(gdb)
	trailRepo := audit.NewRepository(gdb)
	reasonsRepo := reasons.NewRepository(gdb)
	bookingsRepo := bookings.NewRepository(gdb)
	backupRepo := backup.NewRepository(gdb)

	registry := prometheus.NewRegistry()
	movementMetrics := metrics.NewMovementMetrics(registry)

	catalogSvc, err := catalog.NewService(itemsRepo, stockRepo, dbClient, cfg.Import.MaxCSVRows)
	if err != nil {
		fatal(logg, "failed to create catalog service", err)
	}
	locationsSvc, err := locations.NewService(placesRepo, stockRepo, dbClient)
	if err != nil {
		fatal(logg, "failed to create locations service", err)
	}
	ledgerSvc, err := ledger.NewService(stockRepo)
	if err != nil {
		fatal(logg, "failed to create ledger service", err)
	}
	movementsSvc, err := movements.NewService(itemsRepo, placesRepo, stockRepo, trailRepo, dbClient, movementMetrics)
	if err != nil {
		fatal(logg, "failed to create movements service", err)
	}
	auditSvc, err := audit.NewService(trailRepo)
	if err != nil {
		fatal(logg, "failed to create audit service", err)
	}
	reportsSvc, err := reports.NewService(itemsRepo, placesRepo, stockRepo, bookingsRepo)
	if err != nil {
		fatal(logg, "failed to create reports service", err)
	}
	reasonsSvc, err := reasons.NewService(reasonsRepo)
	if err != nil {
		fatal(logg, "failed to create reasons service", err)
	}
	bookingsSvc, err := bookings.NewService(bookingsRepo, itemsRepo)
	if err != nil {
		fatal(logg, "failed to create bookings service", err)
	}
	backupSvc, err := backup.NewService(backupRepo, dbClient)
	if err != nil {
		fatal(logg, "failed to create backup service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:  cfg,
			Logger:  logg,
			DB:      dbClient,
			Redis:   redisClient,
			Idem:    redisClient,
			Gather:  registry,
			Items:   catalogSvc,
			Places:  locationsSvc,
			Stock:   ledgerSvc,
			Moves:   movementsSvc,
			Trail:   auditSvc,
			Reports: reportsSvc,
			Reasons: reasonsSvc,
			Booked:  bookingsSvc,
			Backup:  backupSvc,
		}),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
