// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/edgewatch/internal/analytics"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/models"
)

// Overlay pairs a load series with the regional traffic series on the
// timestamps both share.
type Overlay struct {
	Load    analytics.Series `json:"load"`
	Traffic analytics.Series `json:"traffic"`
}

// CityLoadQuery selects the per-host scatter for one city.
type CityLoadQuery struct {
	City           string
	Start          time.Time
	End            time.Time
	OverlayTraffic bool
}

// CityLoadResult is the per-host load matrix of a city.
type CityLoadResult struct {
	City    string               `json:"city"`
	Region  string               `json:"region"`
	Window  WindowInfo           `json:"window"`
	Matrix  analytics.LoadMatrix `json:"matrix"`
	Hints   analytics.ChartHints `json:"hints"`
	Traffic *analytics.Series    `json:"traffic,omitempty"`
	Empty   bool                 `json:"empty"`
}

// byTime orders load samples chronologically, keeping store order among
// equal timestamps, so host discovery order is stable across backends.
func byTime(samples []models.LoadSample) []models.LoadSample {
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Timestamp.Before(samples[j].Timestamp) })
	return samples
}

// newestFirst orders load samples newest first, keeping store order among
// equal timestamps. The per-city matrix discovers hosts in this order, so
// the most recently reporting host gets the lowest offline sentinel.
func newestFirst(samples []models.LoadSample) []models.LoadSample {
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Timestamp.After(samples[j].Timestamp) })
	return samples
}

// CityLoad builds the load matrix for every cache host in a city. With
// OverlayTraffic set, the city's regional traffic is returned on the
// matrix timestamps.
func (s *Service) CityLoad(ctx context.Context, q CityLoadQuery) (*CityLoadResult, bool, error) {
	w, err := s.resolveWindow(ctx, q.Start, q.End, s.opts.DefaultWindow)
	if err != nil {
		return nil, false, err
	}
	if !s.topo.IsCacheCity(q.City) {
		return nil, false, fmt.Errorf("%w: city %q hosts no cache", ErrUnknownScope, q.City)
	}
	region, _ := s.topo.RegionOfCity(q.City)

	params := struct {
		City    string
		Window  string
		Overlay bool
	}{q.City, w.String(), q.OverlayTraffic}

	return memoize(ctx, s, "city_load", s.opts.TTL.CityLoad, params, func(ctx context.Context) (*CityLoadResult, error) {
		var (
			samples   []models.LoadSample
			bandwidth []models.BandwidthSample
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			samples, err = s.repo.LoadSamples(gctx, w, database.LoadFilter{City: q.City, SampleType: s.opts.LoadSampleType})
			return err
		})
		if q.OverlayTraffic {
			g.Go(func() error {
				var err error
				bandwidth, err = s.repo.BandwidthSamples(gctx, w)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		m := analytics.BuildLoadMatrix(newestFirst(samples))
		res := &CityLoadResult{
			City:   q.City,
			Region: region,
			Window: windowInfo(w),
			Matrix: m,
			Hints:  analytics.LoadChartHints(m),
			Empty:  m.IsEmpty(),
		}
		if q.OverlayTraffic && !m.IsEmpty() {
			grid := analytics.Series{Points: make([]analytics.Point, len(m.Index))}
			for i, ts := range m.Index {
				grid.Points[i] = analytics.Point{Timestamp: ts}
			}
			traffic, _ := analytics.Align(analytics.BandwidthSeries(bandwidth, region), grid)
			res.Traffic = &traffic
		}
		return res, nil
	})
}

// RegionLoadQuery selects the mean load line of one region.
type RegionLoadQuery struct {
	Region         string
	Start          time.Time
	End            time.Time
	OverlayTraffic bool
}

// RegionLoadResult is the mean load across a region's cache hosts.
type RegionLoadResult struct {
	Region  string               `json:"region"`
	Window  WindowInfo           `json:"window"`
	Hosts   []string             `json:"hosts"`
	Mean    analytics.Series     `json:"mean"`
	Hints   analytics.ChartHints `json:"hints"`
	Overlay *Overlay             `json:"overlay,omitempty"`
	Empty   bool                 `json:"empty"`
}

// RegionMeanLoad averages host load per timestamp over a region, absent
// hosts counting as FlatOfflineSentinel. Load and bandwidth are fetched
// concurrently when the traffic overlay is requested.
func (s *Service) RegionMeanLoad(ctx context.Context, q RegionLoadQuery) (*RegionLoadResult, bool, error) {
	w, err := s.resolveWindow(ctx, q.Start, q.End, s.opts.DefaultWindow)
	if err != nil {
		return nil, false, err
	}
	region, err := s.requireCacheRegion(q.Region)
	if err != nil {
		return nil, false, err
	}
	return s.regionMeanLoad(ctx, region, w, q.OverlayTraffic)
}

func (s *Service) regionMeanLoad(ctx context.Context, region string, w database.Window, overlay bool) (*RegionLoadResult, bool, error) {
	params := struct {
		Region  string
		Window  string
		Overlay bool
	}{region, w.String(), overlay}

	return memoize(ctx, s, "region_load", s.opts.TTL.Region, params, func(ctx context.Context) (*RegionLoadResult, error) {
		var (
			samples   []models.LoadSample
			bandwidth []models.BandwidthSample
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			samples, err = s.repo.LoadSamples(gctx, w, database.LoadFilter{Region: region, SampleType: s.opts.LoadSampleType})
			return err
		})
		if overlay {
			g.Go(func() error {
				var err error
				bandwidth, err = s.repo.BandwidthSamples(gctx, w)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		m := analytics.MeanLoadByHost(byTime(samples))
		mean := analytics.RowMeans(m, "mean_load")
		res := &RegionLoadResult{
			Region: region,
			Window: windowInfo(w),
			Hosts:  m.Columns,
			Mean:   mean,
			Hints:  analytics.MeanChartHints(mean),
			Empty:  m.IsEmpty(),
		}
		if overlay && !m.IsEmpty() {
			load, traffic := analytics.Align(mean, analytics.BandwidthSeries(bandwidth, region))
			res.Overlay = &Overlay{Load: load, Traffic: traffic}
		}
		return res, nil
	})
}

// RangeQuery is a bare date range.
type RangeQuery struct {
	Start time.Time
	End   time.Time
}

// AllRegionsResult holds the mean load line of every cache region.
type AllRegionsResult struct {
	Window  WindowInfo          `json:"window"`
	Regions []*RegionLoadResult `json:"regions"`
	Empty   bool                `json:"empty"`
}

// AllRegionsMeanLoad computes RegionMeanLoad for every cache region in
// parallel on the service's worker pool. Regions appear in sorted order.
func (s *Service) AllRegionsMeanLoad(ctx context.Context, q RangeQuery) (*AllRegionsResult, bool, error) {
	w, err := s.resolveWindow(ctx, q.Start, q.End, s.opts.DefaultWindow)
	if err != nil {
		return nil, false, err
	}

	regions := s.topo.CacheRegions()
	group := s.pool.NewGroup()
	cachedFlags := make([]bool, len(regions))
	for i, region := range regions {
		group.SubmitErr(func() (*RegionLoadResult, error) {
			res, cached, err := s.regionMeanLoad(ctx, region, w, false)
			cachedFlags[i] = cached
			return res, err
		})
	}
	results, err := group.Wait()
	if err != nil {
		return nil, false, err
	}

	out := &AllRegionsResult{Window: windowInfo(w), Regions: results, Empty: true}
	allCached := true
	for i, r := range results {
		if !r.Empty {
			out.Empty = false
		}
		allCached = allCached && cachedFlags[i]
	}
	return out, allCached && len(results) > 0, nil
}

// GroupLoadQuery selects mean load per region or per city.
type GroupLoadQuery struct {
	GroupBy analytics.GroupBy
	Start   time.Time
	End     time.Time
}

// GroupLoadResult is one mean load series per group, groups sorted.
type GroupLoadResult struct {
	GroupBy analytics.GroupBy  `json:"group_by"`
	Window  WindowInfo         `json:"window"`
	Series  []analytics.Series `json:"series"`
	Empty   bool               `json:"empty"`
}

// GroupLoad averages load per (timestamp, group) over every sample in the
// window, whatever its sample type.
func (s *Service) GroupLoad(ctx context.Context, q GroupLoadQuery) (*GroupLoadResult, bool, error) {
	w, err := s.resolveWindow(ctx, q.Start, q.End, s.opts.DefaultWindow)
	if err != nil {
		return nil, false, err
	}
	if !q.GroupBy.Valid() {
		return nil, false, fmt.Errorf("%w: %q", analytics.ErrUnknownGroupBy, q.GroupBy)
	}

	params := struct {
		GroupBy analytics.GroupBy
		Window  string
	}{q.GroupBy, w.String()}

	return memoize(ctx, s, "group_load", s.opts.TTL.Region, params, func(ctx context.Context) (*GroupLoadResult, error) {
		samples, err := s.repo.LoadSamples(ctx, w, database.LoadFilter{})
		if err != nil {
			return nil, err
		}
		m, err := analytics.MeanLoadByGroup(samples, q.GroupBy)
		if err != nil {
			return nil, err
		}
		res := &GroupLoadResult{
			GroupBy: q.GroupBy,
			Window:  windowInfo(w),
			Series:  make([]analytics.Series, 0, len(m.Columns)),
			Empty:   m.IsEmpty(),
		}
		for _, col := range m.Columns {
			series, _ := m.Column(col)
			res.Series = append(res.Series, series)
		}
		return res, nil
	})
}
