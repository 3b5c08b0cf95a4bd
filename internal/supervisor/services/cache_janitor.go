// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/metrics"
)

// Sweeper is the part of cache.Cacher the janitor drives.
type Sweeper interface {
	Cleanup() int
	Len() int
}

// CacheJanitorService periodically drops expired memo entries. Backends
// that expire on their own (ristretto) report zero evictions but still
// publish their size.
type CacheJanitorService struct {
	cache    Sweeper
	backend  string
	interval time.Duration
	clock    clockwork.Clock
}

// NewCacheJanitorService sweeps cache every interval (one minute when
// interval is not positive). clock may be nil.
func NewCacheJanitorService(cache Sweeper, backend string, interval time.Duration, clock clockwork.Clock) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CacheJanitorService{cache: cache, backend: backend, interval: interval, clock: clock}
}

// Serve implements suture.Service.
func (j *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			j.sweep()
		}
	}
}

func (j *CacheJanitorService) sweep() {
	removed := j.cache.Cleanup()
	size := j.cache.Len()
	metrics.RecordCacheEvictions(j.backend, removed)
	metrics.SetCacheEntries(j.backend, size)
	if removed > 0 {
		logging.Debug().Str("backend", j.backend).Int("removed", removed).Int("entries", size).Msg("Expired memo entries dropped")
	}
}

// String implements fmt.Stringer for logging.
func (j *CacheJanitorService) String() string {
	return "cache-janitor"
}
