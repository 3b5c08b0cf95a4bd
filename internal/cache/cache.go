// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Entry represents a cached item with expiration
type Entry struct {
	Data      any
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory map with per-entry TTL. Expired
// entries are dropped lazily on Get and in bulk by Cleanup.
//
// When capacity is positive, inserting a new key into a full cache evicts
// the entry closest to expiry.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	ttl      time.Duration
	capacity int
	clock    clockwork.Clock
	stats    Stats
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache with a default TTL and no capacity bound.
//
// Example:
//
//	c := cache.New(10 * time.Minute)
//	c.Set("key", value)
//	if data, ok := c.Get("key"); ok {
//	    // Use cached data
//	}
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, 0, clockwork.NewRealClock())
}

// NewWithClock creates a cache bounded to capacity entries (0 = unbounded)
// that reads time from clock.
func NewWithClock(ttl time.Duration, capacity int, clock clockwork.Clock) *Cache {
	return &Cache{
		entries:  make(map[string]Entry),
		ttl:      ttl,
		capacity: capacity,
		clock:    clock,
		stats: Stats{
			LastCleanup: clock.Now(),
		},
	}
}

// Get returns a value if it exists and has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if !c.clock.Now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		// Another writer may have replaced the entry in the meantime.
		if cur, ok := c.entries[key]; ok && cur.ExpiresAt.Equal(entry.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.capacity > 0 && len(c.entries) >= c.capacity {
		c.evictSoonestLocked()
	}
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: c.clock.Now().Add(ttl),
	}

	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.mu.Unlock()
}

func (c *Cache) evictSoonestLocked() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for key, entry := range c.entries {
		if !found || entry.ExpiresAt.Before(soonest) {
			victim, soonest, found = key, entry.ExpiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
		c.recordEviction()
	}
}

// Delete removes one entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.recordEviction()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included until
// the next Cleanup.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes all expired entries and returns how many were removed.
func (c *Cache) Cleanup() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := 0
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}

	c.stats.mu.Lock()
	c.stats.Evictions += int64(evictions)
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
	return evictions
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *Cache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}
