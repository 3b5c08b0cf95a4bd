// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/edgewatch/internal/models"
	"github.com/tomtom215/edgewatch/internal/topology"
)

func testTopology(t *testing.T) *topology.Registry {
	t.Helper()
	r, err := topology.New([]topology.Node{
		{CellID: 1, Region: "North_America", City: "Chicago", CountryCode: "USA", Caches: []string{"ord1"}},
		{CellID: 50, Region: "North_America", City: "Atlanta", CountryCode: "USA", Caches: []string{"atl1"}},
		{CellID: 5, Region: "Europe", City: "Frankfurt", CountryCode: "DEU", Caches: []string{"fra1"}},
		{CellID: 8, Region: "Asia", City: "Seoul", CountryCode: "KOR"},
		{CellID: 33, Region: "Asia", City: "Hong Kong", CountryCode: "HKG", Caches: []string{"hkg1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func offer(ts time.Time, originCell int, city string) models.QuerySelectionSample {
	return models.QuerySelectionSample{Timestamp: ts, QueryID: originCell, OriginCellID: originCell, City: city}
}

func affinityFixture() []models.QuerySelectionSample {
	return []models.QuerySelectionSample{
		offer(at(0), 1, "Chicago"),
		offer(at(0), 1, "Atlanta"),
		offer(at(0), 1, "Chicago"),
		offer(at(0), 1, "Frankfurt"),
		offer(at(0), 1, "Atlanta"),
		offer(at(0), 1, "Chicago"), // sixth row of the group, not selected
		offer(at(0), 8, "Hong Kong"),
		offer(at(0), 8, "Hong Kong"),
		offer(at(0), 8, "Atlanta"),
		offer(at(10), 1, "Atlanta"),
	}
}

func TestBuildAffinity_SumsCellsOfOneCity(t *testing.T) {
	t.Parallel()

	topo, err := topology.New([]topology.Node{
		{CellID: 1, Region: "North_America", City: "Chicago", CountryCode: "USA", Caches: []string{"ord1"}},
		{CellID: 2, Region: "North_America", City: "Chicago", CountryCode: "USA"},
		{CellID: 50, Region: "North_America", City: "Atlanta", CountryCode: "USA", Caches: []string{"atl1"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	samples := []models.QuerySelectionSample{
		offer(at(0), 1, "Atlanta"),
		offer(at(0), 2, "Atlanta"),
		offer(at(0), 2, "Chicago"),
		offer(at(10), 2, "Atlanta"),
	}
	got, err := BuildAffinity(samples, topo)
	if err != nil {
		t.Fatalf("BuildAffinity: %v", err)
	}

	want := AffinityMatrix{
		Region: "North_America",
		Labels: []string{"Atlanta", "Chicago"},
		Counts: [][]float64{
			{0, 3},
			{0, 1},
		},
	}
	if diff := cmp.Diff(want, got["North_America"]); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAffinity(t *testing.T) {
	t.Parallel()

	got, err := BuildAffinity(affinityFixture(), testTopology(t))
	if err != nil {
		t.Fatalf("BuildAffinity: %v", err)
	}

	want := map[string]AffinityMatrix{
		"North_America": {
			Region: "North_America",
			Labels: []string{"Atlanta", "Chicago", "Seoul"},
			Counts: [][]float64{
				{0, 3, 1},
				{0, 2, 0},
				{0, 0, 0},
			},
		},
		"Europe": {
			Region: "Europe",
			Labels: []string{"Chicago", "Frankfurt"},
			Counts: [][]float64{
				{0, 0},
				{1, 0},
			},
		},
		"Asia": {
			Region: "Asia",
			Labels: []string{"Hong Kong", "Seoul"},
			Counts: [][]float64{
				{0, 2},
				{0, 0},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("affinity mismatch (-want +got):\n%s", diff)
	}

	na := got["North_America"]
	if na.At("Atlanta", "Chicago") != 3 || na.At("Atlanta", "Nowhere") != 0 {
		t.Errorf("At lookups wrong: %v", na.Counts)
	}
	if c := na.DisplayCeiling(); math.Abs(c-3*1.2) > 1e-9 {
		t.Errorf("DisplayCeiling = %v, want 3.6", c)
	}
}

func TestBuildAffinity_SquareAndLabelled(t *testing.T) {
	t.Parallel()

	got, err := BuildAffinity(affinityFixture(), testTopology(t))
	if err != nil {
		t.Fatal(err)
	}
	for region, m := range got {
		if len(m.Counts) != m.Size() {
			t.Errorf("%s: %d rows for %d labels", region, len(m.Counts), m.Size())
		}
		for i, row := range m.Counts {
			if len(row) != m.Size() {
				t.Errorf("%s: row %d has %d columns, want %d", region, i, len(row), m.Size())
			}
		}
		for i := 1; i < len(m.Labels); i++ {
			if m.Labels[i-1] >= m.Labels[i] {
				t.Errorf("%s: labels not strictly sorted: %v", region, m.Labels)
			}
		}
	}
}

func TestBuildAffinity_NoData(t *testing.T) {
	t.Parallel()

	_, err := BuildAffinity(nil, testTopology(t))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestBuildAffinity_EmptyAfterFiltering(t *testing.T) {
	t.Parallel()

	got, err := BuildAffinity([]models.QuerySelectionSample{offer(at(0), 8, "Hong Kong")}, testTopology(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	na := got["North_America"]
	if diff := cmp.Diff([]string{"Atlanta", "Chicago"}, na.Labels); diff != "" {
		t.Errorf("labels mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{0, 0}, {0, 0}}, na.Counts); diff != "" {
		t.Errorf("expected all-zero matrix:\n%s", diff)
	}
	if na.DisplayCeiling() != 0 {
		t.Errorf("DisplayCeiling = %v, want 0", na.DisplayCeiling())
	}
}

func TestBuildAffinity_UnknownOriginIsIntegrityError(t *testing.T) {
	t.Parallel()

	samples := []models.QuerySelectionSample{offer(at(0), 1, "Chicago"), offer(at(0), 999, "Atlanta")}
	_, err := BuildAffinity(samples, testTopology(t))

	var integrity *DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("err = %v, want *DataIntegrityError", err)
	}
	if integrity.CellID != 999 {
		t.Errorf("CellID = %d, want 999", integrity.CellID)
	}
	if !errors.Is(err, topology.ErrCellNotFound) {
		t.Error("integrity error should wrap topology.ErrCellNotFound")
	}
}

func TestDisplayCeiling_IgnoresDiagonal(t *testing.T) {
	t.Parallel()

	m := AffinityMatrix{
		Labels: []string{"a", "b"},
		Counts: [][]float64{{50, 5}, {2, 40}},
	}
	if c := m.DisplayCeiling(); math.Abs(c-6) > 1e-9 {
		t.Errorf("DisplayCeiling = %v, want 6", c)
	}
	if (AffinityMatrix{Labels: []string{"a"}, Counts: [][]float64{{9}}}).DisplayCeiling() != 0 {
		t.Error("1x1 matrix should have zero ceiling")
	}
}
