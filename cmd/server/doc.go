// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

/*
Command server runs the Edgewatch dashboard API.

Startup order:

 1. Configuration: koanf defaults, config.yaml, .env and environment variables
 2. Logging: zerolog, level and format from LOG_LEVEL and LOG_FORMAT
 3. Topology: the cell table from TOPOLOGY_PATH or the built-in table
 4. Sample store: MongoDB or a DuckDB replica, optionally behind a circuit breaker
 5. Dashboard service: memo cache, worker pool and pipelines
 6. HTTP: chi router with CORS, rate limiting and Prometheus metrics
 7. Supervisor tree: cache janitor, store probe and HTTP server

The process stops on SIGINT or SIGTERM. In-flight requests get
SHUTDOWN_TIMEOUT to finish before the store connection is closed.

# Example

	export STORE_BACKEND=duckdb
	export DUCKDB_PATH=/data/replica.duckdb
	export CACHE_BACKEND=ttlcache
	./server

Metrics are exposed at /metrics and the API under /api/v1.
*/
package main
