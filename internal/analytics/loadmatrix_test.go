// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/edgewatch/internal/models"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func load(ts time.Time, host string, v float64) models.LoadSample {
	return models.LoadSample{Timestamp: ts, Host: host, City: "Atlanta", Region: "North_America", Load: v, SampleType: "SteamCache"}
}

func TestBuildLoadMatrix_Scenario(t *testing.T) {
	t.Parallel()

	m := BuildLoadMatrix([]models.LoadSample{
		load(at(0), "hostA", 50),
		load(at(0), "hostB", 60),
		load(at(10), "hostA", 55),
	})

	want := Matrix{
		Index:   []time.Time{at(0), at(10)},
		Columns: []string{"hostA", "hostB"},
		Values:  [][]float64{{50, 60}, {55, 107}},
	}
	if diff := cmp.Diff(want, m.Matrix); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"hostA", "hostB"}, m.Hosts()); diff != "" {
		t.Errorf("hosts mismatch:\n%s", diff)
	}
}

func TestBuildLoadMatrix_SentinelPerDiscoveryOrder(t *testing.T) {
	t.Parallel()

	samples := []models.LoadSample{
		load(at(0), "h0", 10),
		load(at(10), "h1", 20),
		load(at(20), "h2", 30),
	}

	want := [][]float64{
		{10, 107, 109},
		{105, 20, 109},
		{105, 107, 30},
	}
	for run := 0; run < 2; run++ {
		m := BuildLoadMatrix(samples)
		if diff := cmp.Diff(want, m.Values); diff != "" {
			t.Errorf("run %d: values mismatch (-want +got):\n%s", run, diff)
		}
	}

	for i, v := range []float64{105, 107, 109} {
		if got := OfflineSentinel(i); got != v {
			t.Errorf("OfflineSentinel(%d) = %v, want %v", i, got, v)
		}
	}
}

func TestBuildLoadMatrix_AveragesDuplicates(t *testing.T) {
	t.Parallel()

	m := BuildLoadMatrix([]models.LoadSample{
		load(at(0), "atl1", 40),
		load(at(0), "atl1", 60),
		load(at(0), "atl1", 80),
	})
	if len(m.Index) != 1 || m.Values[0][0] != 60 {
		t.Errorf("expected single row with mean 60, got %+v", m.Matrix)
	}
}

// Rows are exactly the timestamps present in the input, sorted, with no
// synthesized grid points, and every host appears in every row.
func TestBuildLoadMatrix_Density(t *testing.T) {
	t.Parallel()

	samples := []models.LoadSample{
		load(at(70), "b", 1),
		load(at(0), "a", 2),
		load(at(30), "c", 3),
		load(at(0), "b", 4),
	}
	m := BuildLoadMatrix(samples)

	if diff := cmp.Diff([]time.Time{at(0), at(30), at(70)}, m.Timestamps()); diff != "" {
		t.Errorf("timestamps mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, m.Hosts()); diff != "" {
		t.Errorf("discovery order mismatch:\n%s", diff)
	}
	for i, row := range m.Values {
		if len(row) != len(m.Columns) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(m.Columns))
		}
	}
}

func TestBuildLoadMatrix_Empty(t *testing.T) {
	t.Parallel()

	m := BuildLoadMatrix(nil)
	if !m.IsEmpty() {
		t.Fatal("expected empty matrix")
	}
	if m.Hosts() == nil || m.Timestamps() == nil {
		t.Error("empty matrix should carry non-nil empty slices")
	}
	h := LoadChartHints(m)
	if !h.XStart.IsZero() || h.YMax != 130 {
		t.Errorf("hints for empty matrix = %+v", h)
	}
}

func TestBuildLoadMatrix_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	samples := []models.LoadSample{load(at(10), "x", 1), load(at(0), "y", 2)}
	before := append([]models.LoadSample(nil), samples...)
	_ = BuildLoadMatrix(samples)
	if diff := cmp.Diff(before, samples); diff != "" {
		t.Errorf("input mutated:\n%s", diff)
	}
}

func TestLoadChartHints(t *testing.T) {
	t.Parallel()

	m := BuildLoadMatrix([]models.LoadSample{
		load(at(0), "a", 1), load(at(0), "b", 1), load(at(0), "c", 1),
		load(at(50), "a", 1),
	})
	h := LoadChartHints(m)

	if h.YMax != 3*2+130 {
		t.Errorf("YMax = %v, want 136", h.YMax)
	}
	if !h.XStart.Equal(at(0)) || !h.XEnd.Equal(at(60)) {
		t.Errorf("x range = %v..%v", h.XStart, h.XEnd)
	}
	if h.Threshold != 100 {
		t.Errorf("Threshold = %v", h.Threshold)
	}
}
