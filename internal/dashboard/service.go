// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package dashboard runs the request pipelines behind each dashboard view:
// validate the window and scope, fetch samples, reshape them with the
// analytics package and memoize the result.
//
// Every result is shared between callers through the memoizer and must be
// treated as read-only.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/edgewatch/internal/cache"
	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/metrics"
	"github.com/tomtom215/edgewatch/internal/topology"
)

// ErrUnknownScope is returned for a region or city the topology does not
// know, or that hosts no cache where one is required.
var ErrUnknownScope = errors.New("unknown scope")

// TTLs holds the memo lifetime of each view.
type TTLs struct {
	Traffic  time.Duration
	Bounds   time.Duration
	CityLoad time.Duration
	Region   time.Duration
	Affinity time.Duration
}

// Options configures a Service.
type Options struct {
	TTL                TTLs
	LoadSampleType     string
	PoolSize           int
	DefaultWindow      time.Duration
	AffinityWindow     time.Duration
	AffinityEarliest   time.Time
	LatestTrafficLimit int

	// Clock anchors default windows when the store is empty.
	Clock clockwork.Clock
}

// OptionsFromConfig maps configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TTL: TTLs{
			Traffic:  cfg.Cache.TrafficTTL,
			Bounds:   cfg.Cache.BoundsTTL,
			CityLoad: cfg.Cache.CityLoadTTL,
			Region:   cfg.Cache.RegionTTL,
			Affinity: cfg.Cache.AffinityTTL,
		},
		LoadSampleType:     cfg.Dashboard.LoadSampleType,
		PoolSize:           cfg.Dashboard.PoolSize,
		DefaultWindow:      cfg.Dashboard.DefaultWindow,
		AffinityWindow:     cfg.Dashboard.AffinityWindow,
		AffinityEarliest:   cfg.AffinityEarliestDate(),
		LatestTrafficLimit: cfg.Dashboard.LatestTrafficLimit,
		Clock:              clockwork.NewRealClock(),
	}
}

// Service serves dashboard views. It is safe for concurrent use.
type Service struct {
	repo  database.SampleRepository
	topo  *topology.Registry
	memo  *cache.Memoizer
	opts  Options
	pool  pond.ResultPool[*RegionLoadResult]
	topov *TopologyResult
}

// NewService builds a Service. Call Close to stop its worker pool.
func NewService(repo database.SampleRepository, topo *topology.Registry, memo *cache.Memoizer, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 4
	}
	if opts.DefaultWindow <= 0 {
		opts.DefaultWindow = 48 * time.Hour
	}
	if opts.AffinityWindow <= 0 {
		opts.AffinityWindow = 7 * 24 * time.Hour
	}
	if opts.LatestTrafficLimit <= 0 {
		opts.LatestTrafficLimit = 288
	}
	return &Service{
		repo:  repo,
		topo:  topo,
		memo:  memo,
		opts:  opts,
		pool:  pond.NewResultPool[*RegionLoadResult](opts.PoolSize),
		topov: buildTopology(topo),
	}
}

// Close stops the fan-out pool after in-flight tasks finish.
func (s *Service) Close() {
	s.pool.StopAndWait()
}

// Ping checks the repository.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Registry returns the topology the service was built with.
func (s *Service) Registry() *topology.Registry {
	return s.topo
}

// memoize runs build at most once per (view, params) within ttl and
// records pipeline metrics for the runs that actually compute.
func memoize[T any](ctx context.Context, s *Service, view string, ttl time.Duration, params any, build func(context.Context) (T, error)) (T, bool, error) {
	key := cache.GenerateKey(view, params)
	return cache.Do(ctx, s.memo, view, key, ttl, func(ctx context.Context) (T, error) {
		start := time.Now()
		v, err := build(ctx)
		metrics.RecordPipeline(view, time.Since(start), err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("view", view).Msg("Pipeline failed")
		} else {
			logging.Ctx(ctx).Debug().Str("view", view).Dur("duration", time.Since(start)).Msg("Pipeline computed")
		}
		return v, err
	})
}

// resolveWindow turns optional dates into a window. Explicit dates are
// validated before anything else happens. Missing dates default to span
// ending at the newest bandwidth sample (or today on an empty store);
// a lone start date runs to that anchor, a lone end date reaches back span.
func (s *Service) resolveWindow(ctx context.Context, start, end time.Time, span time.Duration) (database.Window, error) {
	if !start.IsZero() && !end.IsZero() {
		return database.NewWindow(start, end)
	}

	var anchor time.Time
	if !end.IsZero() {
		anchor = end
	} else {
		bounds, _, err := s.DataBounds(ctx)
		if err != nil {
			return database.Window{}, err
		}
		anchor = bounds.Last
		if anchor.IsZero() {
			anchor = s.opts.Clock.Now()
		}
	}
	if start.IsZero() {
		start = anchor.Add(-span)
	}
	return database.NewWindow(start, anchor)
}

// requireCacheRegion canonicalizes region and checks it hosts caches.
func (s *Service) requireCacheRegion(region string) (string, error) {
	canonical := topology.CanonicalRegion(region)
	if len(s.topo.CacheCitiesIn(canonical)) == 0 {
		return "", fmt.Errorf("%w: region %q has no caches", ErrUnknownScope, region)
	}
	return canonical, nil
}

// WindowInfo echoes the resolved window in calendar dates.
type WindowInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func windowInfo(w database.Window) WindowInfo {
	return WindowInfo{
		Start: w.StartDate().Format(time.DateOnly),
		End:   w.EndDate().Format(time.DateOnly),
	}
}
