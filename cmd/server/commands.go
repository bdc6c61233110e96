package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/userswatch/backend/internal/metrics"
	"github.com/anonto42/userswatch/backend/internal/router"
	"github.com/anonto42/userswatch/backend/pkg/config"
	"github.com/anonto42/userswatch/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "server",
		Short: "Users watch list service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load configuration
			cfg = config.Load()
			config.InitLogger(cfg)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema and exit",
		RunE:  runMigrate,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := config.LogWithContext("cmd", "migrate")

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := router.AutoMigrate(db.Postgres); err != nil {
		return err
	}
	log.Info("PostgreSQL auto-migrations completed.")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := config.LogWithContext("cmd", "serve")

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB() // Ensure database connections are closed when serve exits

	svc := router.Services{
		Postgres: db.Postgres,
		Mongo:    db.Mongo,
		Metrics:  metrics.New(),
	}
	if cfg.RedisURL != "" {
		if svc.Redis, err = config.ConnectRedis(cfg.RedisURL); err != nil {
			return err
		}
		defer svc.Redis.Close()
	}
	if cfg.NatsURL != "" {
		if svc.NATS, err = config.ConnectNATS(cfg.NatsURL); err != nil {
			return err
		}
		defer svc.NATS.Drain()
	}
	if db.Postgres != nil {
		if err := router.AutoMigrate(db.Postgres); err != nil {
			return err
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, svc.Metrics)
	if _, err := router.SetupRoutes(e, cfg, svc); err != nil {
		return err
	}

	metricsServer := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: svc.Metrics.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server stopped")
		}
	}()
	log.WithField("port", cfg.Port).Info("Server started.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	return e.Shutdown(shutdownCtx)
}
