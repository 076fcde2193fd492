// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

// Package main is the entry point for the data quality console server.
//
// The server fronts the perfume catalog's data quality endpoints with a
// stale-while-revalidate statistics cache, serves chart-ready dashboard
// views, and round-trips the house table as CSV for bulk editing.
//
// # Startup
//
//  1. Configuration: koanf layers (defaults, config.yaml, .env, environment)
//  2. Logging: zerolog, level and format from the logging section
//  3. Catalog client behind a circuit breaker and an outbound rate limiter
//  4. Stats cache, websocket hub, dashboard, export/import orchestration
//  5. Supervisor tree: cache janitor, scheduler (optional), hub, HTTP server
//
// # Configuration
//
// The only required setting is the catalog URL:
//
//	export CATALOG_URL=http://localhost:3000
//	export CATALOG_CSRF_TOKEN=...      # optional, browsers send their own
//	export SCHEDULER_ENABLED=true      # nightly forced regeneration
//	./voodoo-quality
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. In-flight requests get the
// server timeout to finish, websocket clients receive a close frame, and a
// running scheduled refresh is awaited.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("catalog_url", cfg.Upstream.BaseURL).
		Str("addr", cfg.Server.Addr()).
		Str("default_timeframe", cfg.Cache.DefaultTimeframe).
		Bool("scheduler", cfg.Scheduler.Enabled).
		Msg("Starting data quality console")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	a, err := newApp(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.close()

	if a.scheduler != nil {
		logging.Info().
			Str("cron", cfg.Scheduler.Cron).
			Int("timeframes", len(a.scheduler.Timeframes())).
			Msg("Nightly statistics refresh scheduled")
	}

	if path := config.ConfigFile(); path != "" {
		watchLogLevel(path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := a.tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := a.tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Stopped")
}

// watchLogLevel re-applies logging.level when the config file changes.
// Other settings need a restart.
func watchLogLevel(path string) {
	err := config.WatchConfigFile(path, func() {
		cfg, err := config.Load()
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config change")
			return
		}
		logging.SetLevelString(cfg.Logging.Level)
		logging.Info().Str("level", cfg.Logging.Level).Msg("Log level reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
	}
}
