// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/edgewatch/internal/analytics"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/models"
	"github.com/tomtom215/edgewatch/internal/topology"
)

// TrafficQuery selects the home page traffic table. Zero dates use the
// default window; empty Regions selects every region. Regions may name
// the Global column.
type TrafficQuery struct {
	Start         time.Time
	End           time.Time
	Regions       []string
	IncludeGlobal bool
}

// TrafficResult is one series per selected bandwidth column.
type TrafficResult struct {
	Window WindowInfo         `json:"window"`
	Series []analytics.Series `json:"series"`
	Empty  bool               `json:"empty"`
}

// Traffic returns bandwidth per region for a window.
func (s *Service) Traffic(ctx context.Context, q TrafficQuery) (*TrafficResult, bool, error) {
	w, err := s.resolveWindow(ctx, q.Start, q.End, s.opts.DefaultWindow)
	if err != nil {
		return nil, false, err
	}
	regions := make([]string, 0, len(q.Regions))
	for _, r := range q.Regions {
		if r != models.GlobalSeries && !s.topo.HasRegion(r) {
			return nil, false, fmt.Errorf("%w: region %q", ErrUnknownScope, r)
		}
		regions = append(regions, topology.CanonicalRegion(r))
	}

	params := struct {
		Window  string
		Regions []string
		Global  bool
	}{w.String(), regions, q.IncludeGlobal}

	return memoize(ctx, s, "traffic", s.opts.TTL.Traffic, params, func(ctx context.Context) (*TrafficResult, error) {
		samples, err := s.repo.BandwidthSamples(ctx, w)
		if err != nil {
			return nil, err
		}
		return &TrafficResult{
			Window: windowInfo(w),
			Series: analytics.SelectBandwidth(samples, regions, q.IncludeGlobal),
			Empty:  len(samples) == 0,
		}, nil
	})
}

// LatestTrafficResult is the most recent bandwidth samples, oldest first.
type LatestTrafficResult struct {
	Limit  int                `json:"limit"`
	Series []analytics.Series `json:"series"`
	Empty  bool               `json:"empty"`
}

// LatestTraffic returns the newest limit samples for every column
// including Global. limit <= 0 selects the configured default (288, two
// days of five-minute samples).
func (s *Service) LatestTraffic(ctx context.Context, limit int) (*LatestTrafficResult, bool, error) {
	if limit <= 0 {
		limit = s.opts.LatestTrafficLimit
	}
	return memoize(ctx, s, "traffic_latest", s.opts.TTL.Traffic, limit, func(ctx context.Context) (*LatestTrafficResult, error) {
		samples, err := s.repo.LatestBandwidth(ctx, limit)
		if err != nil {
			return nil, err
		}
		return &LatestTrafficResult{
			Limit:  limit,
			Series: analytics.SelectBandwidth(samples, nil, true),
			Empty:  len(samples) == 0,
		}, nil
	})
}

// BoundsResult is the date-picker range and its default selection.
type BoundsResult struct {
	First            time.Time  `json:"first"`
	Last             time.Time  `json:"last"`
	DefaultWindow    WindowInfo `json:"default_window"`
	AffinityWindow   WindowInfo `json:"affinity_window"`
	AffinityEarliest string     `json:"affinity_earliest,omitempty"`
	Empty            bool       `json:"empty"`
}

// DataBounds returns the first and last bandwidth timestamps with the
// default windows derived from them.
func (s *Service) DataBounds(ctx context.Context) (*BoundsResult, bool, error) {
	return memoize(ctx, s, "traffic_bounds", s.opts.TTL.Bounds, "bounds", func(ctx context.Context) (*BoundsResult, error) {
		b, err := s.repo.BandwidthBounds(ctx)
		if err != nil {
			return nil, err
		}
		anchor := b.Last
		if b.IsZero() {
			anchor = s.opts.Clock.Now()
		}
		res := &BoundsResult{
			First:          b.First,
			Last:           b.Last,
			DefaultWindow:  windowInfo(database.TrailingWindow(anchor, s.opts.DefaultWindow)),
			AffinityWindow: windowInfo(database.TrailingWindow(anchor, s.opts.AffinityWindow).ClampStart(s.opts.AffinityEarliest)),
			Empty:          b.IsZero(),
		}
		if !s.opts.AffinityEarliest.IsZero() {
			res.AffinityEarliest = s.opts.AffinityEarliest.Format(time.DateOnly)
		}
		return res, nil
	})
}
