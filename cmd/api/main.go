package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	"github.com/darkinowls/recipe-app-api/config"
	"github.com/darkinowls/recipe-app-api/internal/database"
	"github.com/darkinowls/recipe-app-api/internal/logging"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/server"
	"github.com/darkinowls/recipe-app-api/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      string(cfg.Env),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DBDriver == config.DriverPostgres {
		waitCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err := database.WaitForDB(waitCtx, cfg.PostgresDSN(), time.Second)
		cancel()
		if err != nil {
			slog.Error("database never became available", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	media, err := storage.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise media storage", "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, using in-process rate limiting", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	srv := server.New(cfg, server.Dependencies{
		Repo:   repository.NewStore(db),
		Media:  media,
		Redis:  rdb,
		Logger: logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
