// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/edgewatch/internal/analytics"
)

// AffinityQuery selects query-affinity heatmaps. An empty Region returns
// every cache region.
type AffinityQuery struct {
	Region string
	Start  time.Time
	End    time.Time
}

// RegionAffinity is one region's heatmap with its colour ceiling.
type RegionAffinity struct {
	analytics.AffinityMatrix
	DisplayCeiling float64 `json:"display_ceiling"`
}

// AffinityResult holds the requested heatmaps. NoData is set when the
// window contained no selection rows at all.
type AffinityResult struct {
	Window  WindowInfo       `json:"window"`
	Regions []RegionAffinity `json:"regions"`
	NoData  bool             `json:"no_data"`
}

// affinityTable is the memoized form: every region for one window.
type affinityTable struct {
	matrices map[string]analytics.AffinityMatrix
	noData   bool
}

// Affinity builds the cache-city by origin-city selection counts. Windows
// starting before the earliest affinity date are clamped to it.
func (s *Service) Affinity(ctx context.Context, q AffinityQuery) (*AffinityResult, bool, error) {
	w, err := s.resolveWindow(ctx, q.Start, q.End, s.opts.AffinityWindow)
	if err != nil {
		return nil, false, err
	}
	w = w.ClampStart(s.opts.AffinityEarliest)

	regions := s.topo.CacheRegions()
	if q.Region != "" {
		region, err := s.requireCacheRegion(q.Region)
		if err != nil {
			return nil, false, err
		}
		regions = []string{region}
	}

	table, cached, err := memoize(ctx, s, "affinity", s.opts.TTL.Affinity, w.String(), func(ctx context.Context) (*affinityTable, error) {
		samples, err := s.repo.QuerySelectionSamples(ctx, w)
		if err != nil {
			return nil, err
		}
		matrices, err := analytics.BuildAffinity(samples, s.topo)
		if errors.Is(err, analytics.ErrNoData) {
			return &affinityTable{noData: true}, nil
		}
		if err != nil {
			return nil, err
		}
		return &affinityTable{matrices: matrices}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := &AffinityResult{Window: windowInfo(w), NoData: table.noData, Regions: make([]RegionAffinity, 0, len(regions))}
	if table.noData {
		return res, cached, nil
	}
	for _, region := range regions {
		m, ok := table.matrices[region]
		if !ok {
			m = analytics.AffinityMatrix{Region: region, Labels: []string{}, Counts: [][]float64{}}
		}
		res.Regions = append(res.Regions, RegionAffinity{AffinityMatrix: m, DisplayCeiling: m.DisplayCeiling()})
	}
	return res, cached, nil
}
