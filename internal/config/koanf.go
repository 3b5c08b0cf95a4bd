// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/edgewatch/config.yaml",
	"/etc/edgewatch/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

// defaultConfig returns the built-in defaults. The cache TTLs follow the
// refresh cadence of each dashboard view: bandwidth arrives every ten
// minutes, cache load samples are slower, query samples slower still.
func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:             "mongo",
			MongoURI:            "mongodb://localhost:27017",
			MongoDatabase:       "steam",
			BandwidthCollection: "global_bandwidth",
			CacheCollection:     "cache",
			ConnectTimeout:      10 * time.Second,
			ConnectMaxElapsed:   time.Minute,
			QueryTimeout:        30 * time.Second,
			DuckDBPath:          "/data/edgewatch.duckdb",
			DuckDBThreads:       0,
		},
		Topology: TopologyConfig{
			Path: "",
		},
		Cache: CacheConfig{
			Backend:      "memory",
			TrafficTTL:   10 * time.Minute,
			BoundsTTL:    20 * time.Minute,
			CityLoadTTL:  30 * time.Minute,
			RegionTTL:    30 * time.Minute,
			AffinityTTL:  50 * time.Minute,
			MaxEntries:   4096,
			JanitorEvery: time.Minute,
		},
		Dashboard: DashboardConfig{
			LoadSampleType:     "SteamCache",
			PoolSize:           4,
			DefaultWindow:      48 * time.Hour,
			AffinityWindow:     7 * 24 * time.Hour,
			AffinityEarliest:   "2023-08-08",
			LatestTrafficLimit: 288,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3857,
			Timeout:         60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with the precedence
// env > .env > YAML file > defaults, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// .env only fills variables that are not already set in the process
	// environment, so real env vars keep the highest priority.
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadDotEnv() error {
	path := ".env"
	if p := os.Getenv(DotEnvPathEnvVar); p != "" {
		path = p
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot leak
// into the configuration.
var envMappings = map[string]string{
	"store_backend":         "store.backend",
	"mongo_uri":             "store.mongo_uri",
	"mongo_database":        "store.mongo_database",
	"mongo_bandwidth_coll":  "store.bandwidth_collection",
	"mongo_cache_coll":      "store.cache_collection",
	"store_connect_timeout": "store.connect_timeout",
	"store_connect_max":     "store.connect_max_elapsed",
	"store_query_timeout":   "store.query_timeout",
	"duckdb_path":           "store.duckdb_path",
	"duckdb_threads":        "store.duckdb_threads",
	"duckdb_create_schema":  "store.duckdb_create_schema",

	"topology_path": "topology.path",

	"cache_backend":          "cache.backend",
	"cache_traffic_ttl":      "cache.traffic_ttl",
	"cache_bounds_ttl":       "cache.bounds_ttl",
	"cache_city_load_ttl":    "cache.city_load_ttl",
	"cache_region_ttl":       "cache.region_ttl",
	"cache_affinity_ttl":     "cache.affinity_ttl",
	"cache_max_entries":      "cache.max_entries",
	"cache_janitor_interval": "cache.janitor_interval",

	"load_sample_type":       "dashboard.load_sample_type",
	"dashboard_pool_size":    "dashboard.pool_size",
	"default_window":         "dashboard.default_window",
	"affinity_window":        "dashboard.affinity_window",
	"affinity_earliest_date": "dashboard.affinity_earliest_date",
	"latest_traffic_limit":   "dashboard.latest_traffic_limit",

	"breaker_enabled":       "breaker.enabled",
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"rate_limit_reqs":    "security.rate_limit_requests",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
	"cors_origins":       "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps MONGO_URI to store.mongo_uri, HTTP_PORT to
// server.port and so on.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
