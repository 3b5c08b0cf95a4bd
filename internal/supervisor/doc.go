// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

/*
Package supervisor provides process supervision for Edgewatch using suture v4.

The tree restarts crashed services with backoff and shuts everything down
when the root context is canceled:

	RootSupervisor ("edgewatch")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── CacheJanitorService
	│   └── StoreProbeService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a probe that cannot reach the
store backs off without taking the HTTP server with it.

# Usage

	logger := logging.NewSlogLogger()
	tree := supervisor.NewSupervisorTree(logger, supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMaintenanceService(services.NewCacheJanitorService(memo, cfg.Cache.Backend, cfg.Cache.JanitorEvery, nil))
	tree.AddMaintenanceService(services.NewStoreProbeService(repo, 30*time.Second, 5*time.Second, nil))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

Supervisor events (service failures, backoff, resume) are logged through
sutureslog into the same zerolog output as the rest of the process.

# Configuration

TreeConfig fields default to suture's own values when zero:

  - FailureThreshold: 5
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
