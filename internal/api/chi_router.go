// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/edgewatch/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	perf          *middleware.PerformanceMonitor
}

// NewRouter creates a Router. perf may be nil to skip in-process request
// statistics.
func NewRouter(handler *Handler, mw *ChiMiddleware, perf *middleware.PerformanceMonitor) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw, perf: perf}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No such endpoint", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.PrometheusMetrics)
		if router.perf != nil {
			r.Use(router.perf.Middleware)
		}
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/health", func(r chi.Router) {
			r.Get("/", router.handler.Health)
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
		})

		r.Get("/topology", router.handler.Topology)

		r.Route("/traffic", func(r chi.Router) {
			r.Get("/", router.handler.Traffic)
			r.Get("/latest", router.handler.LatestTraffic)
			r.Get("/bounds", router.handler.Bounds)
		})

		r.Route("/load", func(r chi.Router) {
			r.Get("/city", router.handler.CityLoad)
			r.Get("/region", router.handler.RegionLoad)
			r.Get("/regions", router.handler.AllRegionsLoad)
			r.Get("/group", router.handler.GroupLoad)
		})

		r.Get("/affinity", router.handler.Affinity)
		r.Get("/stats/requests", router.handler.RequestStats)
	})

	return r
}
