// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package config loads Edgewatch configuration from built-in defaults, an
// optional YAML file, an optional .env file and environment variables, in
// that order of precedence (later layers win).
package config

import "time"

// Config is the root configuration.
type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Topology  TopologyConfig  `koanf:"topology"`
	Cache     CacheConfig     `koanf:"cache"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// StoreConfig selects and configures the sample repository backend.
type StoreConfig struct {
	// Backend is "mongo" or "duckdb".
	Backend string `koanf:"backend"`

	MongoURI             string        `koanf:"mongo_uri"`
	MongoDatabase        string        `koanf:"mongo_database"`
	BandwidthCollection  string        `koanf:"bandwidth_collection"`
	CacheCollection      string        `koanf:"cache_collection"`
	ConnectTimeout       time.Duration `koanf:"connect_timeout"`
	ConnectMaxElapsed    time.Duration `koanf:"connect_max_elapsed"`
	QueryTimeout         time.Duration `koanf:"query_timeout"`
	DuckDBPath           string        `koanf:"duckdb_path"`
	DuckDBThreads        int           `koanf:"duckdb_threads"`
	DuckDBCreateIfAbsent bool          `koanf:"duckdb_create_schema"`
}

// TopologyConfig points at the cell table. An empty Path selects the
// table compiled into the binary.
type TopologyConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig controls memoization of dashboard results.
type CacheConfig struct {
	// Backend is "memory", "ttlcache" or "ristretto".
	Backend string `koanf:"backend"`

	TrafficTTL   time.Duration `koanf:"traffic_ttl"`
	BoundsTTL    time.Duration `koanf:"bounds_ttl"`
	CityLoadTTL  time.Duration `koanf:"city_load_ttl"`
	RegionTTL    time.Duration `koanf:"region_ttl"`
	AffinityTTL  time.Duration `koanf:"affinity_ttl"`
	MaxEntries   int64         `koanf:"max_entries"`
	JanitorEvery time.Duration `koanf:"janitor_interval"`
}

// DashboardConfig holds pipeline defaults.
type DashboardConfig struct {
	LoadSampleType     string        `koanf:"load_sample_type"`
	PoolSize           int           `koanf:"pool_size"`
	DefaultWindow      time.Duration `koanf:"default_window"`
	AffinityWindow     time.Duration `koanf:"affinity_window"`
	AffinityEarliest   string        `koanf:"affinity_earliest_date"`
	LatestTrafficLimit int           `koanf:"latest_traffic_limit"`
}

// BreakerConfig tunes the circuit breaker in front of the repository.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all layers and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// AffinityEarliestDate parses Dashboard.AffinityEarliest. Validate has
// already rejected malformed values, so the zero time means "unset".
func (c *Config) AffinityEarliestDate() time.Time {
	if c.Dashboard.AffinityEarliest == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.DateOnly, c.Dashboard.AffinityEarliest)
	if err != nil {
		return time.Time{}
	}
	return t
}
