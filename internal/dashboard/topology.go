// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package dashboard

import "github.com/tomtom215/edgewatch/internal/topology"

// RegionTopology lists a region's cache cities for the selectors.
type RegionTopology struct {
	Region      string   `json:"region"`
	DisplayName string   `json:"display_name"`
	CacheCities []string `json:"cache_cities"`
}

// TopologyResult is the static view of the registry.
type TopologyResult struct {
	Source  string           `json:"source"`
	Regions []RegionTopology `json:"regions"`
	Cities  []string         `json:"cache_cities"`
	Nodes   []topology.Node  `json:"nodes"`
}

func buildTopology(topo *topology.Registry) *TopologyResult {
	res := &TopologyResult{
		Source: topo.Source(),
		Cities: topo.CacheCities(),
		Nodes:  topo.Nodes(),
	}
	for _, region := range topo.Regions() {
		cities := topo.CacheCitiesIn(region)
		if cities == nil {
			cities = []string{}
		}
		res.Regions = append(res.Regions, RegionTopology{
			Region:      region,
			DisplayName: topology.DisplayRegion(region),
			CacheCities: cities,
		})
	}
	return res
}

// Topology returns regions, their cache cities and every node. The
// registry never changes, so the view is built once.
func (s *Service) Topology() *TopologyResult {
	return s.topov
}
