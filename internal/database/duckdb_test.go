// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package database

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/edgewatch/internal/models"
)

func seedBandwidth(t *testing.T, repo *DuckDBRepository) {
	t.Helper()
	err := repo.AppendBandwidth(context.Background(), []models.BandwidthSample{
		{Timestamp: at("2024-01-01T00:00:00Z"), Series: map[string]float64{"Global": 10, "Europe": 4, "North_America": 6}},
		{Timestamp: at("2024-01-01T00:05:00Z"), Series: map[string]float64{"Global": 12, "Europe": 5, "North_America": 7}},
		{Timestamp: at("2024-01-02T00:00:00Z"), Series: map[string]float64{"Global": 11, "Europe": 5, "North_America": 6}},
		{Timestamp: at("2024-01-03T12:00:00Z"), Series: map[string]float64{"Global": 9, "Europe": 3, "North_America": 6}},
	})
	checkNoError(t, err)
}

func TestDuckDBRepository_EmptyStore(t *testing.T) {
	t.Parallel()
	repo := setupTestDB(t)
	ctx := context.Background()
	w := mustWindow(t, "2024-01-01", "2024-01-31")

	bw, err := repo.BandwidthSamples(ctx, w)
	checkNoError(t, err)
	if bw == nil || len(bw) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", bw)
	}

	loads, err := repo.LoadSamples(ctx, w, LoadFilter{})
	checkNoError(t, err)
	if loads == nil || len(loads) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", loads)
	}

	sel, err := repo.QuerySelectionSamples(ctx, w)
	checkNoError(t, err)
	if sel == nil || len(sel) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", sel)
	}

	b, err := repo.BandwidthBounds(ctx)
	checkNoError(t, err)
	if !b.IsZero() {
		t.Errorf("bounds of empty store = %+v", b)
	}

	checkNoError(t, repo.Ping(ctx))
}

func TestDuckDBRepository_BandwidthWindow(t *testing.T) {
	t.Parallel()
	repo := setupTestDB(t)
	seedBandwidth(t, repo)
	ctx := context.Background()

	// The window end is inclusive of midnight after the end date.
	got, err := repo.BandwidthSamples(ctx, mustWindow(t, "2024-01-01", "2024-01-01"))
	checkNoError(t, err)

	want := []models.BandwidthSample{
		{Timestamp: at("2024-01-01T00:00:00Z"), Series: map[string]float64{"Global": 10, "Europe": 4, "North_America": 6}},
		{Timestamp: at("2024-01-01T00:05:00Z"), Series: map[string]float64{"Global": 12, "Europe": 5, "North_America": 7}},
		{Timestamp: at("2024-01-02T00:00:00Z"), Series: map[string]float64{"Global": 11, "Europe": 5, "North_America": 6}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BandwidthSamples mismatch (-want +got):\n%s", diff)
	}
}

func TestDuckDBRepository_LatestAndBounds(t *testing.T) {
	t.Parallel()
	repo := setupTestDB(t)
	seedBandwidth(t, repo)
	ctx := context.Background()

	latest, err := repo.LatestBandwidth(ctx, 2)
	checkNoError(t, err)
	checkLen(t, "latest", len(latest), 2)
	if len(latest) == 2 && !latest[0].Timestamp.Equal(at("2024-01-03T12:00:00Z")) {
		t.Errorf("latest[0] = %s, want newest first", latest[0].Timestamp)
	}
	for _, s := range latest {
		if len(s.Series) != 3 {
			t.Errorf("sample %s has %d series, want 3", s.Timestamp, len(s.Series))
		}
	}

	b, err := repo.BandwidthBounds(ctx)
	checkNoError(t, err)
	want := Bounds{First: at("2024-01-01T00:00:00Z"), Last: at("2024-01-03T12:00:00Z")}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestDuckDBRepository_LoadSamplesFilter(t *testing.T) {
	t.Parallel()
	repo := setupTestDB(t)
	ctx := context.Background()

	checkNoError(t, repo.AppendLoadSamples(ctx, []models.LoadSample{
		{Timestamp: at("2024-01-01T00:00:00Z"), Host: "fra-1", City: "Frankfurt", Region: "Europe", Load: 40, SampleType: "SteamCache"},
		{Timestamp: at("2024-01-01T00:00:00Z"), Host: "nyc-1", City: "New York", Region: "North America", Load: 55, SampleType: "SteamCache"},
		{Timestamp: at("2024-01-01T00:00:00Z"), Host: "nyc-edge", City: "New York", Region: "North_America", Load: 20, SampleType: "Edge"},
		{Timestamp: at("2024-01-05T00:00:00Z"), Host: "nyc-1", City: "New York", Region: "North_America", Load: 60, SampleType: "SteamCache"},
	}))
	// Selection-only rows carry no load and never show up as load samples.
	checkNoError(t, repo.AppendQuerySelections(ctx, []models.QuerySelectionSample{
		{Timestamp: at("2024-01-01T00:00:00Z"), QueryID: 7, City: "New York"},
	}))

	w := mustWindow(t, "2024-01-01", "2024-01-02")

	tests := []struct {
		name   string
		filter LoadFilter
		hosts  []string
	}{
		{"no filter", LoadFilter{}, []string{"fra-1", "nyc-1", "nyc-edge"}},
		{"region display spelling", LoadFilter{Region: "North America"}, []string{"nyc-1", "nyc-edge"}},
		{"region with type", LoadFilter{Region: "North_America", SampleType: "SteamCache"}, []string{"nyc-1"}},
		{"city", LoadFilter{City: "Frankfurt"}, []string{"fra-1"}},
		{"host", LoadFilter{Host: "nyc-edge"}, []string{"nyc-edge"}},
		{"no match", LoadFilter{City: "Tokyo"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.LoadSamples(ctx, w, tt.filter)
			checkNoError(t, err)
			hosts := make([]string, 0, len(got))
			for _, s := range got {
				hosts = append(hosts, s.Host)
				if s.Region != "Europe" && s.Region != "North_America" {
					t.Errorf("region %q was not canonicalized", s.Region)
				}
			}
			if diff := cmp.Diff(tt.hosts, hosts); diff != "" {
				t.Errorf("hosts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDuckDBRepository_QuerySelectionsKeepRankOrder(t *testing.T) {
	t.Parallel()
	repo := setupTestDB(t)
	ctx := context.Background()

	ts := at("2024-02-01T10:00:00Z")
	rows := []models.QuerySelectionSample{
		{Timestamp: ts, QueryID: 3, City: "Paris"},
		{Timestamp: ts, QueryID: 3, City: "Amsterdam"},
		{Timestamp: ts, QueryID: 3, City: "Frankfurt"},
		{Timestamp: ts, QueryID: 9, City: "Tokyo"},
		{Timestamp: ts, QueryID: 3, City: "London"},
	}
	checkNoError(t, repo.AppendQuerySelections(ctx, rows))

	got, err := repo.QuerySelectionSamples(ctx, mustWindow(t, "2024-02-01", "2024-02-01"))
	checkNoError(t, err)

	want := make([]models.QuerySelectionSample, len(rows))
	for i, r := range rows {
		r.OriginCellID = r.QueryID
		want[i] = r
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selection order mismatch (-want +got):\n%s", diff)
	}
}
