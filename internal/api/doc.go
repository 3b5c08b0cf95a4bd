// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package api exposes the dashboard views over HTTP.
//
// All routes live under /api/v1 and answer GET with the models.APIResponse
// envelope. Query parameters are validated with the validation package;
// dates are YYYY-MM-DD and both ends of a range are inclusive.
//
//	GET /api/v1/health               repository reachability
//	GET /api/v1/health/live          liveness
//	GET /api/v1/health/ready         readiness (503 when the store is down)
//	GET /api/v1/topology             regions, cache cities and cells
//	GET /api/v1/traffic              bandwidth per region  ?start&end&region&include_global
//	GET /api/v1/traffic/latest       newest samples        ?limit
//	GET /api/v1/traffic/bounds       first/last sample and default windows
//	GET /api/v1/load/city            per-host load matrix  ?city&start&end&overlay
//	GET /api/v1/load/region          mean regional load    ?region&start&end&overlay
//	GET /api/v1/load/regions         mean load of every cache region ?start&end
//	GET /api/v1/load/group           mean load per region or city ?group_by&start&end
//	GET /api/v1/affinity             query-affinity heatmaps ?region&start&end
//	GET /api/v1/stats/requests       per-route latency and memo hit rate
//	GET /metrics                     Prometheus
//
// Error codes map onto statuses as follows:
//
//	VALIDATION_ERROR     400  malformed parameter
//	INVALID_RANGE        400  start date after end date
//	NOT_FOUND            404  unknown region or city
//	DATA_INTEGRITY       500  samples reference an unknown cell
//	STORE_UNAVAILABLE    503  sample store unreachable or breaker open
//	RATE_LIMIT_EXCEEDED  429
package api
