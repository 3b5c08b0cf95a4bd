// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/edgewatch/internal/cache"
	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/dashboard"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/topology"
)

// env is everything a command needs from the outside world.
type env struct {
	loadConfig   func() (*config.Config, error)
	openRepo     func(ctx context.Context, cfg *config.Config) (database.SampleRepository, error)
	loadTopology func(path string) (*topology.Registry, error)
}

func defaultEnv() env {
	return env{
		loadConfig:   config.Load,
		openRepo:     database.Open,
		loadTopology: topology.Load,
	}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	start   string
	end     string
	json    bool
	timeout time.Duration
}

func (g *globals) window() (start, end time.Time, err error) {
	if g.start != "" {
		if start, err = time.Parse(time.DateOnly, g.start); err != nil {
			return start, end, fmt.Errorf("--start: %w", err)
		}
	}
	if g.end != "" {
		if end, err = time.Parse(time.DateOnly, g.end); err != nil {
			return start, end, fmt.Errorf("--end: %w", err)
		}
	}
	return start, end, nil
}

// app carries the env and flags into the subcommands.
type app struct {
	env env
	g   globals
}

func newRootCmd(e env) *cobra.Command {
	a := &app{env: e}

	cmd := &cobra.Command{
		Use:   "edgectl",
		Short: "Inspect CDN cache load and bandwidth from the command line",
		Long: `edgectl reads the same sample store as the Edgewatch server and prints
its dashboard views as plain tables.

Quick start:
  edgectl topology                          # Regions and cache cities
  edgectl traffic bounds                    # First and last sample
  edgectl load city Chicago --start 2024-01-01 --end 2024-01-02
  edgectl affinity Europe --json
  edgectl replicate --to replica.duckdb     # Copy the last week into DuckDB`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.Config{Level: "warn", Format: "console", Output: cmd.ErrOrStderr()})
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.g.start, "start", "", "first day of the window (YYYY-MM-DD)")
	flags.StringVar(&a.g.end, "end", "", "last day of the window, inclusive (YYYY-MM-DD)")
	flags.BoolVar(&a.g.json, "json", false, "print JSON instead of tables")
	flags.DurationVar(&a.g.timeout, "timeout", 2*time.Minute, "overall command timeout")

	cmd.AddCommand(a.topologyCommand())
	cmd.AddCommand(a.trafficCommand())
	cmd.AddCommand(a.loadCommand())
	cmd.AddCommand(a.affinityCommand())
	cmd.AddCommand(a.replicateCommand())

	return cmd
}

// withService opens the store and runs fn against a dashboard service.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *dashboard.Service) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.g.timeout)
	defer cancel()

	cfg, err := a.env.loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	topo, err := a.env.loadTopology(cfg.Topology.Path)
	if err != nil {
		return fmt.Errorf("load topology: %w", err)
	}
	repo, err := a.env.openRepo(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open sample store: %w", err)
	}
	defer func() { _ = repo.Close() }()

	// Memo entries live only as long as this command.
	svc := dashboard.NewService(repo, topo, cache.NewMemoizer(cache.New(time.Minute)), dashboard.OptionsFromConfig(cfg))
	defer svc.Close()

	return fn(ctx, svc)
}
