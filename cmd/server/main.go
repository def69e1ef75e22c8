package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/connections-go/internal/api"
	"github.com/mcoot/connections-go/internal/config"
	"github.com/mcoot/connections-go/internal/factory"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factory.ConfigFromEnv(cfg, logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close application", slog.String("error", err.Error()))
		}
	}()

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.HTTPHost
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(app.Handler(), serverConfig, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx)
	})
	g.Go(func() error {
		return app.HubManager.RunSweeper(ctx, cfg.LiveSweepInterval)
	})
	if app.Bus != nil {
		g.Go(func() error {
			return app.Bus.Run(ctx)
		})
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
