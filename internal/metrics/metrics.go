// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sample store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of sample store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of sample store query errors",
		},
		[]string{"operation", "collection", "error_type"}, // "timeout", "canceled", "error"
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Memoization metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of dashboard result cache hits",
		},
		[]string{"view"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of dashboard result cache misses",
		},
		[]string{"view"},
	)

	CacheShared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_shared_results_total",
			Help: "Total number of results shared between concurrent identical requests",
		},
		[]string{"view"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"backend"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"backend"},
	)

	// Pipeline metrics
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "Duration of dashboard pipelines from fetch to reshaped result",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	PipelineErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Total number of failed dashboard pipelines",
		},
		[]string{"operation"},
	)

	// StoreReachable is set by the periodic store probe.
	StoreReachable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_reachable",
			Help: "1 when the last sample store ping succeeded, 0 otherwise",
		},
	)

	// Topology metrics
	TopologyNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_nodes",
			Help: "Number of cells in the loaded topology",
		},
	)

	TopologyCacheCities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_cache_cities",
			Help: "Number of cities hosting at least one cache",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a sample store query.
func RecordDBQuery(operation, collection string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, collection, errorType(err)).Inc()
	}
}

// errorType keeps the error label low-cardinality.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a memoized lookup for one dashboard view.
func RecordCacheLookup(view string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(view).Inc()
	} else {
		CacheMisses.WithLabelValues(view).Inc()
	}
}

// RecordSharedResult records a caller that received another caller's
// in-flight result.
func RecordSharedResult(view string) {
	CacheShared.WithLabelValues(view).Inc()
}

// RecordCacheEvictions adds n TTL evictions for a backend.
func RecordCacheEvictions(backend string, n int) {
	if n > 0 {
		CacheEvictions.WithLabelValues(backend).Add(float64(n))
	}
}

// SetCacheEntries sets the current entry count for a backend.
func SetCacheEntries(backend string, n int) {
	CacheSize.WithLabelValues(backend).Set(float64(n))
}

// RecordPipeline records a dashboard pipeline run.
func RecordPipeline(operation string, duration time.Duration, err error) {
	PipelineDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		PipelineErrors.WithLabelValues(operation).Inc()
	}
}

// SetStoreReachable records the outcome of a store ping.
func SetStoreReachable(ok bool) {
	if ok {
		StoreReachable.Set(1)
	} else {
		StoreReachable.Set(0)
	}
}

// SetTopologySize publishes the size of the loaded topology.
func SetTopologySize(nodes, cacheCities int) {
	TopologyNodes.Set(float64(nodes))
	TopologyCacheCities.Set(float64(cacheCities))
}
