// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoCache is a Cacher backed by dgraph-io/ristretto. Every entry
// costs 1, so maxEntries bounds the entry count. Ristretto may drop a Set
// under contention; a dropped result is simply recomputed on the next
// request.
type RistrettoCache struct {
	c *ristretto.Cache[string, any]
}

// NewRistrettoCache creates a ristretto backend. maxEntries <= 0 selects
// 10000.
func NewRistrettoCache(maxEntries int64) (*RistrettoCache, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoCache{c: c}, nil
}

func (r *RistrettoCache) Get(key string) (any, bool) {
	return r.c.Get(key)
}

// SetWithTTL waits for the write buffer so the value is visible to the
// next Get.
func (r *RistrettoCache) SetWithTTL(key string, value any, ttl time.Duration) {
	if r.c.SetWithTTL(key, value, 1, ttl) {
		r.c.Wait()
	}
}

func (r *RistrettoCache) Delete(key string) { r.c.Del(key) }

func (r *RistrettoCache) Clear() { r.c.Clear() }

// Len is approximate: keys added minus keys evicted.
func (r *RistrettoCache) Len() int {
	m := r.c.Metrics
	if m == nil {
		return 0
	}
	n := int64(m.KeysAdded()) - int64(m.KeysEvicted())
	if n < 0 {
		return 0
	}
	return int(n)
}

// Cleanup is a no-op; ristretto expires entries on its own schedule.
func (r *RistrettoCache) Cleanup() int { return 0 }

// Close stops ristretto's background goroutines.
func (r *RistrettoCache) Close() { r.c.Close() }
