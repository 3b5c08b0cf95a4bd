// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package topology holds the static map of edge cells to their caches,
// cities and regions.
//
// A Registry is built once at startup and never modified afterwards, so a
// single *Registry is shared by every request without locking. All derived
// indexes (city of a cell, cache cities of a region) are computed when the
// registry is built.
package topology

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Node is one edge cell.
type Node struct {
	CellID         int      `json:"cell_id"`
	ContentMachine string   `json:"cm,omitempty"`
	Caches         []string `json:"caches"`
	Region         string   `json:"region"`
	City           string   `json:"city"`
	CountryCode    string   `json:"country_code"`
}

// HasCache reports whether the cell hosts at least one cache.
func (n Node) HasCache() bool {
	return len(n.Caches) > 0
}

// CacheName returns the primary cache of the cell, or "" for a cache-less cell.
func (n Node) CacheName() string {
	if len(n.Caches) == 0 {
		return ""
	}
	return n.Caches[0]
}

// CanonicalRegion normalises a region label to its underscore form, which
// is also the field name used by bandwidth samples ("South America" and
// "South_America" are the same region).
func CanonicalRegion(region string) string {
	return strings.ReplaceAll(strings.TrimSpace(region), " ", "_")
}

// DisplayRegion is the inverse of CanonicalRegion for labels shown to users.
func DisplayRegion(region string) string {
	return strings.ReplaceAll(region, "_", " ")
}

// Registry is the immutable topology index.
type Registry struct {
	source string
	nodes  []Node

	byCell       map[int]Node
	regionOfCity map[string]string
	cacheCities  map[string][]string
	regions      []string
	cacheRegions []string
	allCaches    []string
}

// New builds a Registry from nodes, applying the same checks as Parse.
// Cell ids and country codes have no missing state in a Node, so only
// region, city and cache names are checked for presence.
func New(nodes []Node) (*Registry, error) {
	const source = "<memory>"
	normalised := make([]Node, len(nodes))
	for i, n := range nodes {
		missing := func(field string) error {
			return &ConfigurationError{Source: source, Entry: i, Field: field, Reason: "required field missing"}
		}
		switch {
		case n.Region == "":
			return nil, missing("region")
		case n.City == "":
			return nil, missing("city")
		}
		if slices.Contains(n.Caches, "") {
			return nil, &ConfigurationError{Source: source, Entry: i, Field: "caches", Reason: "empty cache name"}
		}
		n.Region = CanonicalRegion(n.Region)
		n.Caches = slices.Clone(n.Caches)
		normalised[i] = n
	}
	return newRegistry(normalised, source)
}

func newRegistry(nodes []Node, source string) (*Registry, error) {
	if len(nodes) == 0 {
		return nil, &ConfigurationError{Source: source, Entry: -1, Reason: "topology table has no cells"}
	}

	r := &Registry{
		source:       source,
		nodes:        make([]Node, 0, len(nodes)),
		byCell:       make(map[int]Node, len(nodes)),
		regionOfCity: make(map[string]string),
		cacheCities:  make(map[string][]string),
	}

	regions := make(map[string]struct{})
	cacheRegions := make(map[string]struct{})
	cacheSets := make(map[string]map[string]struct{})
	seenCache := make(map[string]int)

	for i, n := range nodes {
		if _, dup := r.byCell[n.CellID]; dup {
			return nil, &ConfigurationError{Source: source, Entry: i, Field: "cell_id", Reason: fmt.Sprintf("duplicate cell id %d", n.CellID)}
		}
		if prev, ok := r.regionOfCity[n.City]; ok && prev != n.Region {
			return nil, &ConfigurationError{Source: source, Entry: i, Field: "region",
				Reason: fmt.Sprintf("city %q already belongs to region %s", n.City, prev)}
		}
		for _, c := range n.Caches {
			if other, dup := seenCache[c]; dup {
				return nil, &ConfigurationError{Source: source, Entry: i, Field: "caches",
					Reason: fmt.Sprintf("cache %q already listed by cell %d", c, other)}
			}
			seenCache[c] = n.CellID
		}

		n.Caches = slices.Clone(n.Caches)
		r.byCell[n.CellID] = n
		r.nodes = append(r.nodes, n)
		r.regionOfCity[n.City] = n.Region
		regions[n.Region] = struct{}{}

		if !n.HasCache() {
			continue
		}
		cacheRegions[n.Region] = struct{}{}
		if cacheSets[n.Region] == nil {
			cacheSets[n.Region] = make(map[string]struct{})
		}
		cacheSets[n.Region][n.City] = struct{}{}
		r.allCaches = append(r.allCaches, n.Caches...)
	}

	for region, set := range cacheSets {
		r.cacheCities[region] = sortedKeys(set)
	}
	r.regions = sortedKeys(regions)
	r.cacheRegions = sortedKeys(cacheRegions)
	sort.Strings(r.allCaches)
	sort.Slice(r.nodes, func(i, j int) bool { return r.nodes[i].CellID < r.nodes[j].CellID })

	return r, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Source returns the file the registry was loaded from.
func (r *Registry) Source() string {
	return r.source
}

// NodeFor returns the node for cellID or ErrCellNotFound.
func (r *Registry) NodeFor(cellID int) (Node, error) {
	n, ok := r.byCell[cellID]
	if !ok {
		return Node{}, fmt.Errorf("cell %d: %w", cellID, ErrCellNotFound)
	}
	return n, nil
}

// CityFor returns the city of cellID or ErrCellNotFound.
func (r *Registry) CityFor(cellID int) (string, error) {
	n, err := r.NodeFor(cellID)
	if err != nil {
		return "", err
	}
	return n.City, nil
}

// CacheCitiesIn returns the sorted cities of region that host at least one
// cache. Unknown regions and regions without caches yield nil.
func (r *Registry) CacheCitiesIn(region string) []string {
	return slices.Clone(r.cacheCities[CanonicalRegion(region)])
}

// CacheCities returns every city with at least one cache, sorted.
func (r *Registry) CacheCities() []string {
	out := make([]string, 0)
	for _, region := range r.cacheRegions {
		out = append(out, r.cacheCities[region]...)
	}
	sort.Strings(out)
	return out
}

// Regions returns all regions, sorted.
func (r *Registry) Regions() []string {
	return slices.Clone(r.regions)
}

// CacheRegions returns the regions that host at least one cache, sorted.
func (r *Registry) CacheRegions() []string {
	return slices.Clone(r.cacheRegions)
}

// HasRegion reports whether region is known (in either spelling).
func (r *Registry) HasRegion(region string) bool {
	_, ok := slices.BinarySearch(r.regions, CanonicalRegion(region))
	return ok
}

// RegionOfCity returns the region that contains city.
func (r *Registry) RegionOfCity(city string) (string, bool) {
	region, ok := r.regionOfCity[city]
	return region, ok
}

// IsCacheCity reports whether city hosts at least one cache.
func (r *Registry) IsCacheCity(city string) bool {
	region, ok := r.regionOfCity[city]
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(r.cacheCities[region], city)
	return found
}

// Nodes returns a copy of all nodes ordered by cell id.
func (r *Registry) Nodes() []Node {
	out := make([]Node, len(r.nodes))
	for i, n := range r.nodes {
		n.Caches = slices.Clone(n.Caches)
		out[i] = n
	}
	return out
}

// Caches returns every cache host name, sorted.
func (r *Registry) Caches() []string {
	return slices.Clone(r.allCaches)
}
