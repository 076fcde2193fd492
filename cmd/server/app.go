// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package main

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/tomtom215/voodoo-quality/internal/api"
	"github.com/tomtom215/voodoo-quality/internal/cache"
	"github.com/tomtom215/voodoo-quality/internal/catalog"
	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/dashboard"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/metrics"
	"github.com/tomtom215/voodoo-quality/internal/models"
	"github.com/tomtom215/voodoo-quality/internal/scheduler"
	"github.com/tomtom215/voodoo-quality/internal/supervisor"
	"github.com/tomtom215/voodoo-quality/internal/supervisor/services"
	"github.com/tomtom215/voodoo-quality/internal/transfer"
	ws "github.com/tomtom215/voodoo-quality/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds the wired components of one server process.
type app struct {
	cfg       *config.Config
	breaker   *catalog.CircuitBreakerClient
	cache     *cache.StatsCache
	hub       *ws.Hub
	dashboard *dashboard.Dashboard
	scheduler *scheduler.Scheduler
	handler   http.Handler
	server    *http.Server
	tree      *supervisor.SupervisorTree
}

// newApp wires every component from cfg. Nothing runs until tree.Serve.
func newApp(cfg *config.Config) (*app, error) {
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	initial, err := models.ParseTimeframe(cfg.Cache.DefaultTimeframe)
	if err != nil {
		return nil, fmt.Errorf("default timeframe: %w", err)
	}

	breaker := catalog.NewCircuitBreakerClient(catalog.NewClient(&cfg.Upstream))

	statsCache := cache.New(breaker, cache.Options{
		StaleAfter:   cfg.Cache.StaleAfter,
		GCAfter:      cfg.Cache.GCAfter,
		FetchTimeout: cfg.Cache.FetchTimeout,
	})

	hub := ws.NewHub()
	dash := dashboard.New(statsCache, hub, initial)
	exporter := transfer.NewExporter(breaker)
	importer := transfer.NewImporter(breaker, dash, hub)

	handler := api.NewRouter(api.NewHandler(api.Deps{
		Config:    cfg,
		Dashboard: dash,
		Exporter:  exporter,
		Importer:  importer,
		Hub:       hub,
		Breaker:   breaker,
		Cache:     statsCache,
		Version:   version,
	})).Setup()

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Forced refreshes wait for the catalog, so writes get the fetch
		// timeout on top of the request budget.
		WriteTimeout: cfg.Server.Timeout + cfg.Cache.FetchTimeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		statsCache.Close()
		return nil, fmt.Errorf("supervisor tree: %w", err)
	}

	tree.AddBackgroundService(services.NewCacheJanitorService(statsCache, cfg.Cache.JanitorInterval))

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(&cfg.Scheduler, dash)
		if err != nil {
			statsCache.Close()
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		tree.AddBackgroundService(sched)
	}

	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.Timeout))

	return &app{
		cfg:       cfg,
		breaker:   breaker,
		cache:     statsCache,
		hub:       hub,
		dashboard: dash,
		scheduler: sched,
		handler:   handler,
		server:    server,
		tree:      tree,
	}, nil
}

// close releases resources owned outside the supervisor tree.
func (a *app) close() {
	a.cache.Close()
}
