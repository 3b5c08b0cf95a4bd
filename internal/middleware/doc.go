// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package middleware provides the HTTP middleware shared by every API route.
//
//   - RequestID: accepts or generates X-Request-ID and stores it for logging.Ctx
//   - PrometheusMetrics: request counts, latency and in-flight gauge
//   - PerformanceMonitor: in-process latency percentiles and memo hit rate
//     per route, served by the stats endpoint
//   - SecurityHeaders: nosniff, frame denial and HSTS behind TLS
//
// All middleware has the chi signature func(http.Handler) http.Handler.
// Metrics and statistics are keyed by the chi route pattern
// (/api/v1/load/city), never the raw path, so label cardinality stays
// bounded whatever clients send.
package middleware
