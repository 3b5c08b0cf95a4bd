// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/edgewatch/internal/api"
	"github.com/tomtom215/edgewatch/internal/cache"
	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/dashboard"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/metrics"
	"github.com/tomtom215/edgewatch/internal/middleware"
	"github.com/tomtom215/edgewatch/internal/supervisor"
	"github.com/tomtom215/edgewatch/internal/supervisor/services"
	"github.com/tomtom215/edgewatch/internal/topology"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	storeProbeInterval = 30 * time.Second
	storeProbeTimeout  = 5 * time.Second
	slowRequest        = time.Second
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
		Str("store_backend", cfg.Store.Backend).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("breaker", cfg.Breaker.Enabled).
		Msg("Starting Edgewatch")

	topo, err := topology.Load(cfg.Topology.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load topology")
	}
	metrics.SetTopologySize(len(topo.Nodes()), len(topo.CacheCities()))
	logging.Info().
		Str("source", topo.Source()).
		Int("nodes", len(topo.Nodes())).
		Int("cache_cities", len(topo.CacheCities())).
		Msg("Topology loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := database.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open sample store")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing sample store")
		}
	}()

	store, err := cache.NewCacher(cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create memo cache")
	}
	svc := dashboard.NewService(repo, topo, cache.NewMemoizer(store), dashboard.OptionsFromConfig(cfg))
	defer svc.Close()

	perf := middleware.NewPerformanceMonitor(1000, slowRequest)
	handler := api.NewHandler(svc, perf, version)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)), perf)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMaintenanceService(services.NewCacheJanitorService(store, cfg.Cache.Backend, cfg.Cache.JanitorEvery, nil))
	tree.AddMaintenanceService(services.NewStoreProbeService(repo, storeProbeInterval, storeProbeTimeout, nil))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, u := range unstopped {
		logging.Warn().Str("service", u.Name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("Edgewatch stopped")
}
