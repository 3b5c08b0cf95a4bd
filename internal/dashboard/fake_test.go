// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/edgewatch/internal/cache"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/models"
	"github.com/tomtom215/edgewatch/internal/topology"
)

// fakeRepository serves fixed samples, applies filters like a real
// backend and records every call.
type fakeRepository struct {
	mu         sync.Mutex
	bandwidth  []models.BandwidthSample
	loads      []models.LoadSample
	selections []models.QuerySelectionSample
	err        error

	calls   map[string]int
	windows []database.Window
	filters []database.LoadFilter
}

func (f *fakeRepository) record(op string, w *database.Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
	if w != nil {
		f.windows = append(f.windows, *w)
	}
}

func (f *fakeRepository) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeRepository) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRepository) BandwidthSamples(_ context.Context, w database.Window) ([]models.BandwidthSample, error) {
	f.record("bandwidth", &w)
	if f.err != nil {
		return nil, f.err
	}
	out := []models.BandwidthSample{}
	for _, s := range f.bandwidth {
		if w.Contains(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepository) LatestBandwidth(_ context.Context, limit int) ([]models.BandwidthSample, error) {
	f.record("latest", nil)
	if f.err != nil {
		return nil, f.err
	}
	out := []models.BandwidthSample{}
	for i := len(f.bandwidth) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.bandwidth[i])
	}
	return out, nil
}

func (f *fakeRepository) BandwidthBounds(context.Context) (database.Bounds, error) {
	f.record("bounds", nil)
	if f.err != nil {
		return database.Bounds{}, f.err
	}
	var b database.Bounds
	for _, s := range f.bandwidth {
		if b.First.IsZero() || s.Timestamp.Before(b.First) {
			b.First = s.Timestamp
		}
		if s.Timestamp.After(b.Last) {
			b.Last = s.Timestamp
		}
	}
	return b, nil
}

func (f *fakeRepository) LoadSamples(_ context.Context, w database.Window, filter database.LoadFilter) ([]models.LoadSample, error) {
	f.record("load", &w)
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.LoadSample{}
	for _, s := range f.loads {
		switch {
		case !w.Contains(s.Timestamp):
		case filter.Region != "" && s.Region != topology.CanonicalRegion(filter.Region):
		case filter.City != "" && s.City != filter.City:
		case filter.Host != "" && s.Host != filter.Host:
		case filter.SampleType != "" && s.SampleType != filter.SampleType:
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepository) QuerySelectionSamples(_ context.Context, w database.Window) ([]models.QuerySelectionSample, error) {
	f.record("selections", &w)
	if f.err != nil {
		return nil, f.err
	}
	out := []models.QuerySelectionSample{}
	for _, s := range f.selections {
		if w.Contains(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepository) Ping(context.Context) error { return f.err }

func (f *fakeRepository) Close() error { return nil }

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testRegistry(t *testing.T) *topology.Registry {
	t.Helper()
	r, err := topology.New([]topology.Node{
		{CellID: 1, Region: "North_America", City: "Chicago", CountryCode: "USA", Caches: []string{"ord1", "ord2"}},
		{CellID: 2, Region: "North_America", City: "Atlanta", CountryCode: "USA", Caches: []string{"atl1"}},
		{CellID: 3, Region: "North_America", City: "Denver", CountryCode: "USA"},
		{CellID: 5, Region: "Europe", City: "Frankfurt", CountryCode: "DEU", Caches: []string{"fra1"}},
		{CellID: 8, Region: "Africa", City: "Lagos", CountryCode: "NGA"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func newTestService(t *testing.T, repo *fakeRepository) *Service {
	t.Helper()
	svc := NewService(repo, testRegistry(t), cache.NewMemoizer(cache.New(time.Hour)), Options{
		TTL: TTLs{
			Traffic:  time.Hour,
			Bounds:   time.Hour,
			CityLoad: time.Hour,
			Region:   time.Hour,
			Affinity: time.Hour,
		},
		LoadSampleType:     "SteamCache",
		PoolSize:           2,
		DefaultWindow:      48 * time.Hour,
		AffinityWindow:     7 * 24 * time.Hour,
		AffinityEarliest:   day("2023-08-08"),
		LatestTrafficLimit: 288,
		Clock:              clockwork.NewFakeClockAt(ts("2024-06-01T12:00:00Z")),
	})
	t.Cleanup(svc.Close)
	return svc
}

func bw(at string, global, na, eu float64) models.BandwidthSample {
	return models.BandwidthSample{
		Timestamp: ts(at),
		Series:    map[string]float64{"Global": global, "North_America": na, "Europe": eu},
	}
}

func load(at, host, city, region string, v float64) models.LoadSample {
	return models.LoadSample{Timestamp: ts(at), Host: host, City: city, Region: region, Load: v, SampleType: "SteamCache"}
}

func fixtureRepository() *fakeRepository {
	return &fakeRepository{
		bandwidth: []models.BandwidthSample{
			bw("2024-01-01T00:00:00Z", 10, 6, 4),
			bw("2024-01-01T00:10:00Z", 12, 7, 5),
			bw("2024-01-01T00:20:00Z", 11, 6, 5),
			bw("2024-01-03T00:00:00Z", 9, 5, 4),
		},
		loads: []models.LoadSample{
			load("2024-01-01T00:10:00Z", "ord2", "Chicago", "North_America", 30),
			load("2024-01-01T00:00:00Z", "ord1", "Chicago", "North_America", 40),
			load("2024-01-01T00:00:00Z", "ord1", "Chicago", "North_America", 60),
			load("2024-01-01T00:10:00Z", "ord1", "Chicago", "North_America", 20),
			load("2024-01-01T00:00:00Z", "atl1", "Atlanta", "North_America", 80),
			load("2024-01-01T00:30:00Z", "atl1", "Atlanta", "North_America", 90),
			load("2024-01-01T00:00:00Z", "fra1", "Frankfurt", "Europe", 10),
			{Timestamp: ts("2024-01-01T00:00:00Z"), Host: "edge9", City: "Chicago", Region: "North_America", Load: 99, SampleType: "Edge"},
		},
		selections: []models.QuerySelectionSample{
			{Timestamp: ts("2024-01-01T00:00:00Z"), QueryID: 1, OriginCellID: 1, City: "Chicago"},
			{Timestamp: ts("2024-01-01T00:00:00Z"), QueryID: 1, OriginCellID: 1, City: "Atlanta"},
			{Timestamp: ts("2024-01-01T00:00:00Z"), QueryID: 3, OriginCellID: 3, City: "Atlanta"},
			{Timestamp: ts("2024-01-01T00:00:00Z"), QueryID: 8, OriginCellID: 8, City: "Frankfurt"},
		},
	}
}
