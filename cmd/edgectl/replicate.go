// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/models"
)

// replicaWindow is the default copy span when no dates are given.
const replicaWindow = 7 * 24 * time.Hour

type snapshot struct {
	bandwidth  []models.BandwidthSample
	loads      []models.LoadSample
	selections []models.QuerySelectionSample
}

func (a *app) replicateCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "replicate --to <file.duckdb>",
		Short: "Copy a window of samples from the configured store into a DuckDB replica",
		Long: `Copy bandwidth, cache load and query selection samples from the configured
store into a DuckDB file, creating its tables when missing. Without --start
and --end the last seven days before the newest bandwidth sample are copied.

Rows are appended; copying the same window twice duplicates it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return errors.New("--to is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.g.timeout)
			defer cancel()

			cfg, err := a.env.loadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			src, err := a.env.openRepo(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open sample store: %w", err)
			}
			defer func() { _ = src.Close() }()

			w, err := a.replicaWindow(ctx, src)
			if err != nil {
				return err
			}
			snap, err := fetchSnapshot(ctx, src, w)
			if err != nil {
				return err
			}

			dst, err := database.OpenDuckDB(ctx, &config.StoreConfig{
				Backend:              "duckdb",
				DuckDBPath:           to,
				DuckDBThreads:        cfg.Store.DuckDBThreads,
				DuckDBCreateIfAbsent: true,
				QueryTimeout:         cfg.Store.QueryTimeout,
			})
			if err != nil {
				return fmt.Errorf("open replica: %w", err)
			}
			defer func() { _ = dst.Close() }()

			if err := dst.AppendBandwidth(ctx, snap.bandwidth); err != nil {
				return err
			}
			if err := dst.AppendLoadSamples(ctx, snap.loads); err != nil {
				return err
			}
			if err := dst.AppendQuerySelections(ctx, snap.selections); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s into %s: %d bandwidth, %d load, %d selection rows\n",
				w, to, len(snap.bandwidth), len(snap.loads), len(snap.selections))
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "DuckDB file to append to")
	return cmd
}

// replicaWindow uses the --start/--end flags when given, and otherwise
// the week ending at the newest bandwidth sample.
func (a *app) replicaWindow(ctx context.Context, src database.SampleRepository) (database.Window, error) {
	start, end, err := a.g.window()
	if err != nil {
		return database.Window{}, err
	}
	if !start.IsZero() || !end.IsZero() {
		if start.IsZero() {
			start = end.Add(-replicaWindow)
		}
		if end.IsZero() {
			end = start.Add(replicaWindow)
		}
		return database.NewWindow(start, end)
	}

	bounds, err := src.BandwidthBounds(ctx)
	if err != nil {
		return database.Window{}, err
	}
	if bounds.IsZero() {
		return database.Window{}, errors.New("the sample store holds no bandwidth samples")
	}
	return database.TrailingWindow(bounds.Last, replicaWindow), nil
}

// fetchSnapshot reads the three sample kinds concurrently.
func fetchSnapshot(ctx context.Context, src database.SampleRepository, w database.Window) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.bandwidth, err = src.BandwidthSamples(gctx, w)
		return err
	})
	g.Go(func() (err error) {
		snap.loads, err = src.LoadSamples(gctx, w, database.LoadFilter{})
		return err
	})
	g.Go(func() (err error) {
		snap.selections, err = src.QuerySelectionSamples(gctx, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
