// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package analytics reshapes raw telemetry samples into chart-ready
// structures: dense timestamp-by-host load matrices, per-region and
// per-city mean load, city-by-city query affinity matrices, and pairs of
// series aligned on their common timestamps.
//
// Every function here is pure. Output depends only on the arguments, no
// package state is read or written, and inputs are never modified. That is
// what lets the dashboard layer memoize results keyed on the request
// parameters alone.
//
// Missing cells are filled with sentinel loads that sit above the normal
// 0-100 range. Two policies exist on purpose:
//
//   - BuildLoadMatrix staggers the sentinel per host (105, 107, 109, ...)
//     so offline hosts stay distinguishable on a shared axis.
//   - MeanLoadByHost and MeanLoadByGroup use a flat 100, because only the
//     cross-host mean is charted.
package analytics
