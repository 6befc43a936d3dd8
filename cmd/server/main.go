package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sunward.gg/internal/config"
	"sunward.gg/internal/factory"
)

func main() {
	configPath := flag.String("config", os.Getenv("SUNWARD_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("path", *configPath), slog.Any("error", err))
		os.Exit(1)
	}
	applyEnvOverrides(&cfg)

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	app, err := factory.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Runner.Init(ctx); err != nil {
		logger.Error("initialization failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := app.Runner.Start(ctx); err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server started",
		slog.String("addr", app.Server.Addr()),
		slog.String("storage", cfg.Storage.Type))

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := app.Runner.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// applyEnvOverrides lets deploy environments override file settings without
// editing the config
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("SUNWARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SUNWARD_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("SUNWARD_REDIS_URL"); v != "" {
		cfg.Storage.Redis.URL = v
	}
	if v := os.Getenv("SUNWARD_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("SUNWARD_ADMIN_KEY_HASH"); v != "" {
		cfg.Admin.KeyHash = v
	}
	if v := os.Getenv("SUNWARD_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("SUNWARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	cfg.Normalize()
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
