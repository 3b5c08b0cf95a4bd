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

func (a *app) affinityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "affinity [region]",
		Short: "Print cache-city by origin-city selection counts",
		Long: `Print how often each cache city was offered to queries from each origin
city. Without a region every cache region is printed. Windows that start
before the earliest affinity date are clamped to it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.g.window()
			if err != nil {
				return err
			}
			q := dashboard.AffinityQuery{Start: start, End: end}
			if len(args) == 1 {
				q.Region = args[0]
			}
			return a.withService(cmd, func(ctx context.Context, svc *dashboard.Service) error {
				res, _, err := svc.Affinity(ctx, q)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.g.json {
					return writeJSON(out, res)
				}
				if res.NoData {
					fmt.Fprintf(out, "No query selections between %s and %s.\n", res.Window.Start, res.Window.End)
					return nil
				}
				for i, r := range res.Regions {
					if i > 0 {
						fmt.Fprintln(out)
					}
					if err := printAffinity(out, r.AffinityMatrix, r.DisplayCeiling); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
