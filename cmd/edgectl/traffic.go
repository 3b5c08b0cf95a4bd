// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/edgewatch/internal/dashboard"
)

func (a *app) trafficCommand() *cobra.Command {
	var (
		regions []string
		global  bool
	)

	cmd := &cobra.Command{
		Use:   "traffic",
		Short: "Print bandwidth per region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.g.window()
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *dashboard.Service) error {
				res, _, err := svc.Traffic(ctx, dashboard.TrafficQuery{Start: start, End: end, Regions: regions, IncludeGlobal: global})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.g.json {
					return writeJSON(out, res)
				}
				if res.Empty {
					fmt.Fprintf(out, "No bandwidth samples between %s and %s.\n", res.Window.Start, res.Window.End)
					return nil
				}
				return printSeries(out, res.Series...)
			})
		},
	}
	cmd.Flags().StringSliceVar(&regions, "region", nil, "regions to include (repeatable, default all)")
	cmd.Flags().BoolVar(&global, "global", true, "include the Global column")

	cmd.AddCommand(&cobra.Command{
		Use:   "bounds",
		Short: "Print the first and last bandwidth sample and the default windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *dashboard.Service) error {
				res, _, err := svc.DataBounds(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.g.json {
					return writeJSON(out, res)
				}
				if res.Empty {
					fmt.Fprintln(out, "The sample store holds no bandwidth samples.")
				} else {
					fmt.Fprintf(out, "First sample:     %s\n", res.First.UTC().Format(tsLayout))
					fmt.Fprintf(out, "Last sample:      %s\n", res.Last.UTC().Format(tsLayout))
				}
				fmt.Fprintf(out, "Default window:   %s to %s\n", res.DefaultWindow.Start, res.DefaultWindow.End)
				fmt.Fprintf(out, "Affinity window:  %s to %s\n", res.AffinityWindow.Start, res.AffinityWindow.End)
				return nil
			})
		},
	})

	return cmd
}
