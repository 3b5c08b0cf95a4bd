// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package api

import (
	"time"

	"github.com/tomtom215/edgewatch/internal/dashboard"
	"github.com/tomtom215/edgewatch/internal/middleware"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	svc       *dashboard.Service
	perf      *middleware.PerformanceMonitor
	version   string
	startTime time.Time
}

// NewHandler creates a Handler. perf may be nil, in which case the stats
// endpoint reports no routes.
func NewHandler(svc *dashboard.Service, perf *middleware.PerformanceMonitor, version string) *Handler {
	return &Handler{
		svc:       svc,
		perf:      perf,
		version:   version,
		startTime: time.Now(),
	}
}
