// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/edgewatch/internal/analytics"
	"github.com/tomtom215/edgewatch/internal/dashboard"
	"github.com/tomtom215/edgewatch/internal/middleware"
	"github.com/tomtom215/edgewatch/internal/models"
)

// Topology returns regions, cache cities and every cell.
func (h *Handler) Topology(w http.ResponseWriter, r *http.Request) {
	respondData(w, h.svc.Topology(), false, time.Now())
}

// Traffic returns bandwidth per region for the selected window.
func (h *Handler) Traffic(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := TrafficRequest{
		DateRangeRequest: parseDateRange(r),
		Regions:          parseCommaSeparated(r.URL.Query()["region"]),
		Global:           getBoolParam(r, "include_global") || getBoolParam(r, "global"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	from, to := req.dates()
	res, cached, err := h.svc.Traffic(r.Context(), dashboard.TrafficQuery{
		Start:         from,
		End:           to,
		Regions:       req.Regions,
		IncludeGlobal: req.Global,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// LatestTraffic returns the newest bandwidth samples.
func (h *Handler) LatestTraffic(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, ok := getIntParam(r, "limit", 0)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer", nil)
		return
	}
	req := LatestTrafficRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res, cached, err := h.svc.LatestTraffic(r.Context(), req.Limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// Bounds returns the first and last bandwidth timestamps and the default
// date-picker windows.
func (h *Handler) Bounds(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, cached, err := h.svc.DataBounds(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// CityLoad returns the per-host load matrix of one city.
func (h *Handler) CityLoad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := CityLoadRequest{
		DateRangeRequest: parseDateRange(r),
		City:             r.URL.Query().Get("city"),
		Overlay:          getBoolParam(r, "overlay"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	from, to := req.dates()
	res, cached, err := h.svc.CityLoad(r.Context(), dashboard.CityLoadQuery{
		City:           req.City,
		Start:          from,
		End:            to,
		OverlayTraffic: req.Overlay,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// RegionLoad returns the mean load line of one region.
func (h *Handler) RegionLoad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := RegionLoadRequest{
		DateRangeRequest: parseDateRange(r),
		Region:           r.URL.Query().Get("region"),
		Overlay:          getBoolParam(r, "overlay"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	from, to := req.dates()
	res, cached, err := h.svc.RegionMeanLoad(r.Context(), dashboard.RegionLoadQuery{
		Region:         req.Region,
		Start:          from,
		End:            to,
		OverlayTraffic: req.Overlay,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// AllRegionsLoad returns the mean load line of every cache region.
func (h *Handler) AllRegionsLoad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := parseDateRange(r)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	from, to := req.dates()
	res, cached, err := h.svc.AllRegionsMeanLoad(r.Context(), dashboard.RangeQuery{Start: from, End: to})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// GroupLoad returns mean load per region or per city.
func (h *Handler) GroupLoad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := GroupLoadRequest{
		DateRangeRequest: parseDateRange(r),
		GroupBy:          r.URL.Query().Get("group_by"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	from, to := req.dates()
	res, cached, err := h.svc.GroupLoad(r.Context(), dashboard.GroupLoadQuery{
		GroupBy: analytics.GroupBy(req.GroupBy),
		Start:   from,
		End:     to,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// Affinity returns the query-affinity heatmaps.
func (h *Handler) Affinity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := AffinityRequest{
		DateRangeRequest: parseDateRange(r),
		Region:           r.URL.Query().Get("region"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	from, to := req.dates()
	res, cached, err := h.svc.Affinity(r.Context(), dashboard.AffinityQuery{
		Region: req.Region,
		Start:  from,
		End:    to,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, res, cached, start)
}

// RequestStats returns per-route latency percentiles and memo hit rate.
func (h *Handler) RequestStats(w http.ResponseWriter, r *http.Request) {
	stats := []middleware.EndpointStats{}
	if h.perf != nil {
		stats = h.perf.GetStats()
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     stats,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
