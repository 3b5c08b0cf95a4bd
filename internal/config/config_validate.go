// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the configuration is complete and within bounds.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateDashboard(); err != nil {
		return err
	}
	if err := c.validateBreaker(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_BACKEND=mongo")
		}
		if !strings.HasPrefix(c.Store.MongoURI, "mongodb://") && !strings.HasPrefix(c.Store.MongoURI, "mongodb+srv://") {
			return fmt.Errorf("MONGO_URI must start with mongodb:// or mongodb+srv://")
		}
		if c.Store.MongoDatabase == "" || c.Store.BandwidthCollection == "" || c.Store.CacheCollection == "" {
			return fmt.Errorf("mongo database and collection names must not be empty")
		}
	case "duckdb":
		if c.Store.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORE_BACKEND=duckdb")
		}
		if c.Store.DuckDBThreads < 0 {
			return fmt.Errorf("DUCKDB_THREADS must not be negative")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: mongo, duckdb (got %q)", c.Store.Backend)
	}

	if c.Store.QueryTimeout <= 0 {
		return fmt.Errorf("STORE_QUERY_TIMEOUT must be positive")
	}
	if c.Store.ConnectTimeout <= 0 {
		return fmt.Errorf("STORE_CONNECT_TIMEOUT must be positive")
	}
	return nil
}

var validCacheBackends = map[string]bool{
	"memory":    true,
	"ttlcache":  true,
	"ristretto": true,
}

func (c *Config) validateCache() error {
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, ttlcache, ristretto (got %q)", c.Cache.Backend)
	}

	ttls := map[string]time.Duration{
		"CACHE_TRAFFIC_TTL":   c.Cache.TrafficTTL,
		"CACHE_BOUNDS_TTL":    c.Cache.BoundsTTL,
		"CACHE_CITY_LOAD_TTL": c.Cache.CityLoadTTL,
		"CACHE_REGION_TTL":    c.Cache.RegionTTL,
		"CACHE_AFFINITY_TTL":  c.Cache.AffinityTTL,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1")
	}
	return nil
}

func (c *Config) validateDashboard() error {
	if c.Dashboard.LoadSampleType == "" {
		return fmt.Errorf("LOAD_SAMPLE_TYPE must not be empty")
	}
	if c.Dashboard.PoolSize < 1 || c.Dashboard.PoolSize > 64 {
		return fmt.Errorf("DASHBOARD_POOL_SIZE must be between 1 and 64")
	}
	if c.Dashboard.DefaultWindow < 24*time.Hour || c.Dashboard.AffinityWindow < 24*time.Hour {
		return fmt.Errorf("DEFAULT_WINDOW and AFFINITY_WINDOW must be at least 24h")
	}
	if c.Dashboard.AffinityEarliest != "" {
		if _, err := time.Parse(time.DateOnly, c.Dashboard.AffinityEarliest); err != nil {
			return fmt.Errorf("AFFINITY_EARLIEST_DATE must be YYYY-MM-DD: %w", err)
		}
	}
	if c.Dashboard.LatestTrafficLimit < 1 {
		return fmt.Errorf("LATEST_TRAFFIC_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
