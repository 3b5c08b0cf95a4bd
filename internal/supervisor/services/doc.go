// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

/*
Package services provides suture.Service wrappers for Edgewatch components.

Each wrapper implements suture's context-aware Serve method and fmt.Stringer,
so the supervisor can restart it on failure and name it in its logs:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Runs ListenAndServe and shuts down gracefully on cancellation
  - Configurable shutdown timeout for draining connections

Cache Janitor (CacheJanitorService):
  - Drops expired memo entries on an interval
  - Publishes cache_entries and cache_evictions_total

Store Probe (StoreProbeService):
  - Pings the sample store on an interval
  - Publishes store_reachable and logs reachability transitions

Timed services take a clockwork.Clock so tests drive them with a fake clock.
*/
package services
