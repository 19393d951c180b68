package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/idlecoins/internal/api"
	"github.com/mcoot/idlecoins/internal/config"
	"github.com/mcoot/idlecoins/internal/factory"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to a YAML config file")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := settings.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	app, err := factory.New(factory.Config{
		Settings: settings,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(context.Background()); err != nil {
		logger.Error("failed to start application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := api.NewServer(app.Handler(), api.ServerConfigFrom(settings.Server), logger)
	if err := server.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", settings.Storage.Type),
		slog.Int("upgrades", len(app.Catalog.All())))

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Flush every cached player before exiting
	flushCtx, flushCancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout+5*time.Second)
	defer flushCancel()
	if err := app.Shutdown(flushCtx); err != nil {
		logger.Error("failed to flush players", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
