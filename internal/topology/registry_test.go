// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package topology

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustDefault(t *testing.T) *Registry {
	t.Helper()
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load(embedded): %v", err)
	}
	return r
}

func TestLoad_EmbeddedTable(t *testing.T) {
	t.Parallel()

	r := mustDefault(t)

	if got := len(r.Nodes()); got != 24 {
		t.Errorf("len(Nodes) = %d, want 24", got)
	}
	wantRegions := []string{"Africa", "Asia", "Europe", "North_America", "Oceania", "South_America"}
	if diff := cmp.Diff(wantRegions, r.Regions()); diff != "" {
		t.Errorf("Regions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRegions, r.CacheRegions()); diff != "" {
		t.Errorf("CacheRegions mismatch (-want +got):\n%s", diff)
	}

	n, err := r.NodeFor(5)
	if err != nil {
		t.Fatalf("NodeFor(5): %v", err)
	}
	if n.City != "Frankfurt" || n.CacheName() != "fra1" || len(n.Caches) != 2 {
		t.Errorf("NodeFor(5) = %+v", n)
	}
}

func TestCacheCitiesIn(t *testing.T) {
	t.Parallel()

	r := mustDefault(t)

	tests := []struct {
		region string
		want   []string
	}{
		{"North_America", []string{"Ashburn", "Atlanta", "Chicago", "Dallas/Fort Worth", "Los Angeles", "Seattle"}},
		{"Asia", []string{"Hong Kong", "Singapore", "Tokyo"}},
		{"South America", []string{"São Paulo"}},
		{"South_America", []string{"São Paulo"}},
		{"Antarctica", nil},
	}

	for _, tt := range tests {
		got := r.CacheCitiesIn(tt.region)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("CacheCitiesIn(%q) mismatch (-want +got):\n%s", tt.region, diff)
		}
	}
}

// The union of every region's cache cities is exactly the set of cities with
// a cache, and cache-less cells never contribute.
func TestCacheCities_Closure(t *testing.T) {
	t.Parallel()

	r := mustDefault(t)

	var union []string
	for _, region := range r.Regions() {
		union = append(union, r.CacheCitiesIn(region)...)
	}
	sort.Strings(union)

	var withCache []string
	seen := map[string]bool{}
	for _, n := range r.Nodes() {
		if n.HasCache() && !seen[n.City] {
			seen[n.City] = true
			withCache = append(withCache, n.City)
		}
	}
	sort.Strings(withCache)

	if diff := cmp.Diff(withCache, union); diff != "" {
		t.Errorf("closure mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(withCache, r.CacheCities()); diff != "" {
		t.Errorf("CacheCities mismatch (-want +got):\n%s", diff)
	}

	for _, cacheless := range []string{"Buenos Aires", "Santiago", "Lima", "Seoul"} {
		if r.IsCacheCity(cacheless) {
			t.Errorf("%s has no cache but IsCacheCity returned true", cacheless)
		}
		for _, c := range union {
			if c == cacheless {
				t.Errorf("cache-less city %s appears in a CacheCitiesIn result", cacheless)
			}
		}
	}
}

func TestCityFor(t *testing.T) {
	t.Parallel()

	r := mustDefault(t)

	city, err := r.CityFor(116)
	if err != nil || city != "Buenos Aires" {
		t.Errorf("CityFor(116) = %q, %v", city, err)
	}

	_, err = r.CityFor(9999)
	if !errors.Is(err, ErrCellNotFound) {
		t.Errorf("CityFor(9999) error = %v, want ErrCellNotFound", err)
	}
}

func TestRegionCanonicalisation(t *testing.T) {
	t.Parallel()

	r := mustDefault(t)

	region, ok := r.RegionOfCity("Buenos Aires")
	if !ok || region != "South_America" {
		t.Errorf("RegionOfCity(Buenos Aires) = %q, %v", region, ok)
	}
	if !r.HasRegion("North America") {
		t.Error("HasRegion should accept the display spelling")
	}
	if DisplayRegion("North_America") != "North America" {
		t.Error("DisplayRegion did not replace underscores")
	}
}

func TestParse_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"missing cell id", "cells:\n  - {region: Europe, city: Paris, code: FRA, caches: [par1]}\n", "cell_id"},
		{"missing city", "cells:\n  - {cell_id: 1, region: Europe, code: FRA}\n", "city"},
		{"missing code", "cells:\n  - {cell_id: 1, region: Europe, city: Paris}\n", "code"},
		{"duplicate cell", "cells:\n  - {cell_id: 1, region: Europe, city: Paris, code: FRA}\n  - {cell_id: 1, region: Europe, city: Lyon, code: FRA}\n", "cell_id"},
		{"city in two regions", "cells:\n  - {cell_id: 1, region: Europe, city: Paris, code: FRA}\n  - {cell_id: 2, region: Asia, city: Paris, code: FRA}\n", "region"},
		{"duplicate cache", "cells:\n  - {cell_id: 1, region: Europe, city: Paris, code: FRA, caches: [par1]}\n  - {cell_id: 2, region: Europe, city: Lyon, code: FRA, caches: [par1]}\n", "caches"},
		{"unknown field", "cells:\n  - {cell_id: 1, region: Europe, city: Paris, code: FRA, lat: 48.8}\n", ""},
		{"empty table", "cells: []\n", ""},
		{"empty document", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.yaml), "test.yaml")
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Parse error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q (err: %v)", cfgErr.Field, tt.field, err)
			}
			if !strings.Contains(err.Error(), "test.yaml") {
				t.Errorf("error should name the source: %v", err)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "topology.yaml")
	doc := "cells:\n  - {cell_id: 7, region: North America, city: Denver, code: USA, caches: [den1]}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Source() != path {
		t.Errorf("Source = %q", r.Source())
	}
	if diff := cmp.Diff([]string{"Denver"}, r.CacheCitiesIn("North_America")); diff != "" {
		t.Errorf("CacheCitiesIn mismatch:\n%s", diff)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNodes_ReturnsCopies(t *testing.T) {
	t.Parallel()

	r := mustDefault(t)
	nodes := r.Nodes()
	nodes[0].Caches = append(nodes[0].Caches, "mutated")
	nodes[0].City = "Nowhere"

	again := r.Nodes()
	if again[0].City == "Nowhere" {
		t.Error("registry node mutated through Nodes()")
	}
	for _, c := range again[0].Caches {
		if c == "mutated" {
			t.Error("registry caches mutated through Nodes()")
		}
	}
}

func TestNew_FromNodes(t *testing.T) {
	t.Parallel()

	r, err := New([]Node{
		{CellID: 1, Region: "North America", City: "Chicago", CountryCode: "USA", Caches: []string{"ord1"}},
		{CellID: 2, Region: "North_America", City: "Denver", CountryCode: "USA"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Chicago"}, r.CacheCitiesIn("North_America")); diff != "" {
		t.Errorf("CacheCitiesIn mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ord1"}, r.Caches()); diff != "" {
		t.Errorf("Caches mismatch:\n%s", diff)
	}

	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []Node
		entry int
		field string
	}{
		{"missing region", []Node{{CellID: 1, City: "Paris", CountryCode: "FRA"}}, 0, "region"},
		{"missing city", []Node{
			{CellID: 1, Region: "Europe", City: "Paris", CountryCode: "FRA"},
			{CellID: 2, Region: "Europe", CountryCode: "FRA"},
		}, 1, "city"},
		{"empty cache name", []Node{{CellID: 1, Region: "Europe", City: "Paris", CountryCode: "FRA", Caches: []string{"par1", ""}}}, 0, "caches"},
		{"duplicate cell", []Node{
			{CellID: 1, Region: "Europe", City: "Paris", CountryCode: "FRA"},
			{CellID: 1, Region: "Europe", City: "Lyon", CountryCode: "FRA"},
		}, 1, "cell_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.nodes)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("New error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.field || cfgErr.Entry != tt.entry {
				t.Errorf("Field, Entry = %q, %d, want %q, %d (err: %v)", cfgErr.Field, cfgErr.Entry, tt.field, tt.entry, err)
			}
		})
	}
}
