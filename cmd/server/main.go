package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/dataquality/internal/config"
	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/JonMunkholm/dataquality/internal/export"
	"github.com/JonMunkholm/dataquality/internal/logging"
	"github.com/JonMunkholm/dataquality/internal/metrics"
	"github.com/JonMunkholm/dataquality/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	// Publishing is optional; without a database URL the API still serves
	// checks, cleaning and downloads.
	var publisher *export.Publisher
	if cfg.Database.Enabled() {
		pool, err := connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		publisher = export.NewPublisher(pool, cfg.Database.PublishTimeout)
	} else {
		slog.Info("no database configured, publishing disabled")
	}

	service := core.NewService(serviceConfig(cfg))
	m := metrics.New()
	service.SetObserver(m)
	m.WatchUploads(service.LimiterStatus)

	server := web.NewServer(cfg, service, publisher, m)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSweeper(jobCtx, cfg.Session.SweepInterval)
	server.StartBackground(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// serviceConfig maps application settings onto the service limits.
func serviceConfig(cfg *config.Config) core.ServiceConfig {
	return core.ServiceConfig{
		MaxFileSize:   cfg.Upload.MaxFileSize.Int64(),
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		LoadTimeout:   cfg.Upload.Timeout,
		SessionTTL:    cfg.Session.TTL,
		MaxDatasets:   cfg.Session.MaxDatasets,
		Report: core.ReportOptions{
			PreviewRows:      cfg.Report.PreviewRows,
			DuplicateSamples: cfg.Report.DuplicateSamples,
		},
	}
}

// connect opens and verifies the publish connection pool.
func connect(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(db.MaxConns)
	poolConfig.MinConns = int32(db.MinConns)
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(db.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
