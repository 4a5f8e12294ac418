// Command flowcanvas serves a flow editor session over HTTP.
//
// Usage:
//
//	flowcanvas [-config flowcanvas.yaml]
//
// Settings come from defaults, the optional config file, then FLOWCANVAS_*
// environment variables (see package config).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/randalmurphal/flowcanvas/internal/api"
	"github.com/randalmurphal/flowcanvas/internal/applog"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/config"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("FLOWCANVAS_CONFIG"), "path to a YAML or JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "flowcanvas:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, zl := applog.Init(applog.Config{Level: settings.LogLevel, Format: settings.LogFormat})
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, settings.StoreBackend, store.Params{
		SQLitePath:  settings.SQLitePath,
		RedisURL:    settings.RedisURL,
		RedisPrefix: settings.RedisPrefix,
	})
	if err != nil {
		return fmt.Errorf("open %s store: %w", settings.StoreBackend, err)
	}
	defer func() { _ = st.Close() }()
	logger.Info("store ready", slog.String("backend", settings.StoreBackend))

	session := flowcanvas.NewSession(st,
		flowcanvas.WithLogger(logger),
		flowcanvas.WithMetrics(settings.Metrics),
		flowcanvas.WithTracing(settings.Tracing),
		flowcanvas.WithPersisterOptions(
			flowcanvas.WithStoreKey(settings.FlowKey),
			flowcanvas.WithStoreTimeout(settings.StoreTimeout),
		),
	)
	if err := session.Open(ctx); err != nil {
		// The canvas still works with the initial flow; saving may recover.
		logger.Warn("could not restore saved flow", slog.String("error", err.Error()))
	}

	srvCfg := api.DefaultServerConfig()
	srvCfg.Addr = settings.ListenAddr
	server := api.NewServer(srvCfg, session, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
