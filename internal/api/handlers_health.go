// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/edgewatch/internal/models"
)

// healthCheckTimeout bounds the repository ping of a health probe.
const healthCheckTimeout = 3 * time.Second

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	StoreConnected  bool    `json:"store_connected"`
	TopologySource  string  `json:"topology_source"`
	TopologyRegions int     `json:"topology_regions"`
	Uptime          float64 `json:"uptime_seconds"`
}

func (h *Handler) storeReachable(r *http.Request) bool {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()
	return h.svc.Ping(ctx) == nil
}

// Health reports overall status. It always answers 200; a store outage
// shows as "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.storeReachable(r)
	status := "healthy"
	if !connected {
		status = "degraded"
	}

	topo := h.svc.Topology()
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: HealthStatus{
			Status:          status,
			Version:         h.version,
			StoreConnected:  connected,
			TopologySource:  topo.Source,
			TopologyRegions: len(topo.Regions),
			Uptime:          time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthReady handles readiness probe requests. It answers 503 until the
// sample store is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.storeReachable(r) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Sample store not reachable", nil)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"ready": true},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
