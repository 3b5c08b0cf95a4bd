// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) topologyCommand() *cobra.Command {
	var nodes bool

	cmd := &cobra.Command{
		Use:   "topology",
		Short: "List regions and their cache cities",
		Long: `List every region with the cities that host a cache. With --nodes, list
every cell of the topology table instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.env.loadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			topo, err := a.env.loadTopology(cfg.Topology.Path)
			if err != nil {
				return fmt.Errorf("load topology: %w", err)
			}

			out := cmd.OutOrStdout()
			if nodes {
				if a.g.json {
					return writeJSON(out, topo.Nodes())
				}
				tw := newTable(out)
				writeRow(tw, []string{"CELL", "REGION", "CITY", "COUNTRY", "CACHES"})
				writeRow(tw, []string{"----", "------", "----", "-------", "------"})
				for _, n := range topo.Nodes() {
					writeRow(tw, []string{strconv.Itoa(n.CellID), n.Region, n.City, n.CountryCode, strings.Join(n.Caches, ",")})
				}
				return tw.Flush()
			}

			if a.g.json {
				return writeJSON(out, map[string]any{"source": topo.Source(), "regions": topo.Regions(), "cache_cities": topo.CacheCities()})
			}
			fmt.Fprintf(out, "Source: %s\n\n", topo.Source())
			tw := newTable(out)
			writeRow(tw, []string{"REGION", "CACHE CITIES"})
			writeRow(tw, []string{"------", "------------"})
			for _, region := range topo.Regions() {
				cities := topo.CacheCitiesIn(region)
				list := "-"
				if len(cities) > 0 {
					list = strings.Join(cities, ", ")
				}
				writeRow(tw, []string{region, list})
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&nodes, "nodes", false, "list every cell instead of regions")
	return cmd
}
