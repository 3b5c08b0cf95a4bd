// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/edgewatch/internal/config"
)

// Open connects the configured backend and, when enabled, wraps it in the
// circuit breaker.
func Open(ctx context.Context, cfg *config.Config) (SampleRepository, error) {
	var (
		repo SampleRepository
		err  error
	)
	switch cfg.Store.Backend {
	case "mongo":
		repo, err = ConnectMongo(ctx, &cfg.Store)
	case "duckdb":
		repo, err = OpenDuckDB(ctx, &cfg.Store)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Breaker.Enabled {
		return NewBreakerRepository(repo, cfg.Breaker), nil
	}
	return repo, nil
}
