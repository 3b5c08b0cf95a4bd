// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TTLCache is a Cacher backed by jellydator/ttlcache. Hits do not extend
// an entry's lifetime. Expired entries are removed by Cleanup; the
// library's own expiry goroutine is not started.
type TTLCache struct {
	c *ttlcache.Cache[string, any]
}

// NewTTLCache creates a ttlcache backend holding at most capacity entries
// (0 = unbounded).
func NewTTLCache(capacity uint64) *TTLCache {
	opts := []ttlcache.Option[string, any]{
		ttlcache.WithTTL[string, any](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, any](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, any](capacity))
	}
	return &TTLCache{c: ttlcache.New[string, any](opts...)}
}

func (t *TTLCache) Get(key string) (any, bool) {
	item := t.c.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (t *TTLCache) SetWithTTL(key string, value any, ttl time.Duration) {
	t.c.Set(key, value, ttl)
}

func (t *TTLCache) Delete(key string) { t.c.Delete(key) }

func (t *TTLCache) Clear() { t.c.DeleteAll() }

func (t *TTLCache) Len() int { return t.c.Len() }

func (t *TTLCache) Cleanup() int {
	before := t.c.Len()
	t.c.DeleteExpired()
	if removed := before - t.c.Len(); removed > 0 {
		return removed
	}
	return 0
}
