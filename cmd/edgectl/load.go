// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/edgewatch/internal/analytics"
	"github.com/tomtom215/edgewatch/internal/dashboard"
)

func (a *app) loadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Print cache load matrices and regional means",
	}
	cmd.AddCommand(a.loadCityCommand())
	cmd.AddCommand(a.loadRegionCommand())
	cmd.AddCommand(a.loadGroupCommand())
	return cmd
}

func noData(out io.Writer, w dashboard.WindowInfo) {
	fmt.Fprintf(out, "No load samples between %s and %s.\n", w.Start, w.End)
}

func (a *app) loadCityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "city <city>",
		Short: "Print per-host load for one cache city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.g.window()
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *dashboard.Service) error {
				res, _, err := svc.CityLoad(ctx, dashboard.CityLoadQuery{City: args[0], Start: start, End: end})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.g.json {
					return writeJSON(out, res)
				}
				if res.Empty {
					noData(out, res.Window)
					return nil
				}
				fmt.Fprintf(out, "%s (%s), %s to %s\n", res.City, res.Region, res.Window.Start, res.Window.End)
				return printMatrix(out, res.Matrix.Matrix)
			})
		},
	}
}

func (a *app) loadRegionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "region [region]",
		Short: "Print the mean host load of one region, or of every cache region",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.g.window()
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *dashboard.Service) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					res, _, err := svc.RegionMeanLoad(ctx, dashboard.RegionLoadQuery{Region: args[0], Start: start, End: end})
					if err != nil {
						return err
					}
					if a.g.json {
						return writeJSON(out, res)
					}
					if res.Empty {
						noData(out, res.Window)
						return nil
					}
					fmt.Fprintf(out, "Hosts: %s\n", strings.Join(res.Hosts, ", "))
					return printSeries(out, res.Mean)
				}

				res, _, err := svc.AllRegionsMeanLoad(ctx, dashboard.RangeQuery{Start: start, End: end})
				if err != nil {
					return err
				}
				if a.g.json {
					return writeJSON(out, res)
				}
				if res.Empty {
					noData(out, res.Window)
					return nil
				}
				series := make([]analytics.Series, 0, len(res.Regions))
				for _, r := range res.Regions {
					s := r.Mean
					s.Name = r.Region
					series = append(series, s)
				}
				return printSeries(out, series...)
			})
		},
	}
}

func (a *app) loadGroupCommand() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Print mean load per region or per city across all sample types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.g.window()
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *dashboard.Service) error {
				res, _, err := svc.GroupLoad(ctx, dashboard.GroupLoadQuery{GroupBy: analytics.GroupBy(by), Start: start, End: end})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.g.json {
					return writeJSON(out, res)
				}
				if res.Empty {
					noData(out, res.Window)
					return nil
				}
				return printSeries(out, res.Series...)
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", string(analytics.GroupByRegion), "group key: region or city")
	return cmd
}
