// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

/*
Package metrics provides Prometheus metrics for Edgewatch.

Collectors are registered on the default registry with promauto and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

Sample store:
  - store_query_duration_seconds{operation, collection}
  - store_query_errors_total{operation, collection, error_type}
  - store_reachable (set by the supervisor probe)

API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Memoization:
  - cache_hits_total{view}, cache_misses_total{view}
  - cache_shared_results_total{view}
  - cache_entries{backend}, cache_evictions_total{backend}

Pipelines:
  - pipeline_duration_seconds{operation}
  - pipeline_errors_total{operation}

Topology:
  - topology_nodes, topology_cache_cities

Circuit breaker:
  - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name, result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

# Example PromQL

Memo hit ratio per view:

	sum by (view) (rate(cache_hits_total[5m]))
	  / (sum by (view) (rate(cache_hits_total[5m])) + sum by (view) (rate(cache_misses_total[5m])))

p95 affinity pipeline latency:

	histogram_quantile(0.95, rate(pipeline_duration_seconds_bucket{operation="affinity"}[5m]))
*/
package metrics
