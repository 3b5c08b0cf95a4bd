// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package cache

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/edgewatch/internal/config"
)

// Cacher is the storage behind a Memoizer. Cache, TTLCache and
// RistrettoCache implement it.
type Cacher interface {
	// Get returns the value and true if found and not expired.
	Get(key string) (any, bool)

	// SetWithTTL stores a value that expires after ttl.
	SetWithTTL(key string, value any, ttl time.Duration)

	Delete(key string)
	Clear()

	// Len returns the current number of entries. Backends that count
	// asynchronously return an approximation.
	Len() int

	// Cleanup drops expired entries and returns how many were dropped.
	Cleanup() int
}

// Backend names accepted by NewCacher.
const (
	BackendMemory    = "memory"
	BackendTTLCache  = "ttlcache"
	BackendRistretto = "ristretto"
)

// defaultTTL applies to Set calls that do not name a TTL. Dashboard views
// always pass their own.
const defaultTTL = 10 * time.Minute

// NewCacher creates the backend selected by cfg.Backend.
//
// Example:
//
//	store, err := cache.NewCacher(cfg.Cache)
//	if err != nil {
//	    return err
//	}
//	memo := cache.NewMemoizer(store)
func NewCacher(cfg config.CacheConfig) (Cacher, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewWithClock(defaultTTL, int(cfg.MaxEntries), clockwork.NewRealClock()), nil
	case BackendTTLCache:
		return NewTTLCache(uint64(cfg.MaxEntries)), nil
	case BackendRistretto:
		return NewRistrettoCache(cfg.MaxEntries)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Verify interface implementations at compile time
var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*TTLCache)(nil)
	_ Cacher = (*RistrettoCache)(nil)
)
