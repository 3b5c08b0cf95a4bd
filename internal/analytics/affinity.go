// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"sort"

	"github.com/tomtom215/edgewatch/internal/models"
)

// SelectedPerQuery is how many ranked rows of one (timestamp, query) group
// count as caches actually offered.
const SelectedPerQuery = 5

// displayHeadroom scales the colour ceiling above the largest cross-city count.
const displayHeadroom = 1.2

// CityResolver is the slice of the topology registry the affinity builder
// needs.
type CityResolver interface {
	CityFor(cellID int) (string, error)
	CacheRegions() []string
	CacheCitiesIn(region string) []string
}

// AffinityMatrix is a square count matrix for one region. Rows are cache
// cities, columns are query origin cities, and both axes share the same
// sorted Labels. Counts[i][j] is how often Labels[i] was offered to
// queries from Labels[j].
type AffinityMatrix struct {
	Region string      `json:"region"`
	Labels []string    `json:"labels"`
	Counts [][]float64 `json:"counts"`
}

// Size returns the number of labels on each axis.
func (a AffinityMatrix) Size() int {
	return len(a.Labels)
}

// At returns the count for (cache city, origin city), or 0 when either
// label is absent.
func (a AffinityMatrix) At(cacheCity, originCity string) float64 {
	i := sort.SearchStrings(a.Labels, cacheCity)
	j := sort.SearchStrings(a.Labels, originCity)
	if i >= len(a.Labels) || a.Labels[i] != cacheCity || j >= len(a.Labels) || a.Labels[j] != originCity {
		return 0
	}
	return a.Counts[i][j]
}

// DisplayCeiling is the colour-scale maximum for a heatmap: the largest
// off-diagonal count times 1.2. Self-affinity on the diagonal is excluded
// because it dominates every row. Matrices with no off-diagonal cells
// return 0.
func (a AffinityMatrix) DisplayCeiling() float64 {
	var ceiling float64
	for i := range a.Counts {
		for j, v := range a.Counts[i] {
			if i != j && v > ceiling {
				ceiling = v
			}
		}
	}
	return ceiling * displayHeadroom
}

type queryKey struct {
	ts    int64
	query int
}

// BuildAffinity counts, per region, how often each of the region's cache
// cities was among the first SelectedPerQuery caches offered to queries
// from each origin city.
//
// The result has one entry per cache-bearing region. A region whose caches
// were never offered still gets a matrix, labelled with its cache cities
// and filled with zeros. An empty samples slice returns ErrNoData. An
// origin cell missing from the topology returns *DataIntegrityError.
func BuildAffinity(samples []models.QuerySelectionSample, topo CityResolver) (map[string]AffinityMatrix, error) {
	if len(samples) == 0 {
		return nil, ErrNoData
	}

	// counts[origin][candidate]
	counts := make(map[string]map[string]float64)
	seen := make(map[queryKey]int)
	originOf := make(map[int]string)

	for _, s := range samples {
		k := queryKey{ts: s.Timestamp.UnixNano(), query: s.QueryID}
		if seen[k] >= SelectedPerQuery {
			continue
		}
		seen[k]++

		origin, ok := originOf[s.OriginCellID]
		if !ok {
			city, err := topo.CityFor(s.OriginCellID)
			if err != nil {
				return nil, &DataIntegrityError{CellID: s.OriginCellID, Err: err}
			}
			origin = city
			originOf[s.OriginCellID] = city
		}

		row := counts[origin]
		if row == nil {
			row = make(map[string]float64)
			counts[origin] = row
		}
		row[s.City]++
	}

	origins := make([]string, 0, len(counts))
	for o := range counts {
		origins = append(origins, o)
	}
	sort.Strings(origins)

	out := make(map[string]AffinityMatrix)
	for _, region := range topo.CacheRegions() {
		out[region] = regionAffinity(region, topo.CacheCitiesIn(region), origins, counts)
	}
	return out, nil
}

// regionAffinity restricts the origin-by-candidate counts to the region's
// cache cities, drops origins with no hits there, transposes, and squares
// the result over the union of both label sets.
func regionAffinity(region string, cacheCities, origins []string, counts map[string]map[string]float64) AffinityMatrix {
	isCache := make(map[string]bool, len(cacheCities))
	for _, c := range cacheCities {
		isCache[c] = true
	}

	active := make(map[string]bool)
	for _, o := range origins {
		for _, c := range cacheCities {
			if counts[o][c] != 0 {
				active[o] = true
				break
			}
		}
	}

	union := make(map[string]struct{}, len(cacheCities)+len(active))
	for _, c := range cacheCities {
		union[c] = struct{}{}
	}
	for o := range active {
		union[o] = struct{}{}
	}
	labels := sortedKeys(union)

	m := AffinityMatrix{Region: region, Labels: labels, Counts: make([][]float64, len(labels))}
	for i, cacheCity := range labels {
		row := make([]float64, len(labels))
		if isCache[cacheCity] {
			for j, origin := range labels {
				if active[origin] {
					row[j] = counts[origin][cacheCity]
				}
			}
		}
		m.Counts[i] = row
	}
	return m
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
