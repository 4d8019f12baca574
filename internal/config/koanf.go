// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bookshelf/config.yaml",
	"/etc/bookshelf/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			JWTSecret:         "", // admin routes disabled
			SessionTimeout:    24 * time.Hour,
		},
		Sources: SourcesConfig{
			Engine:      "csv",
			ItemsPath:   "data/Books.csv",
			RatingsPath: "data/Book-Ratings.csv",
			RatersPath:  "data/Users.csv",
			Delimiter:   ";",
			Encoding:    "latin1",
			RowCap:      50000,
			HTTPTimeout: 60 * time.Second,
			DownloadDir: "", // os.TempDir
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          2 * time.Minute,
				FailureThreshold: 3,
			},
		},
		Recommend: RecommendConfig{
			Enabled:           true,
			BuildOnStartup:    true,
			RebuildInterval:   24 * time.Hour,
			BuildTimeout:      30 * time.Minute,
			MinUserRatings:    2,
			MinItemRatings:    1,
			DefaultK:          10,
			DefaultTopN:       10,
			MaxTopN:           50,
			SimilarityWorkers: 0, // GOMAXPROCS
			CacheSize:         1000,
			CacheTTL:          5 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:            true,
			Backend:            "gochannel",
			NATSURL:            "nats://127.0.0.1:4222",
			EmbeddedServer:     false,
			EmbeddedHost:       "127.0.0.1",
			EmbeddedPort:       4222,
			RebuildTopic:       "catalog.rebuild",
			SnapshotTopic:      "catalog.snapshot",
			MinRebuildInterval: 30 * time.Second,
		},
	}
}

// Load loads configuration using Koanf with the following precedence:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any mapped setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// BOOKS_PATH -> sources.items_path
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

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
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

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
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
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",

	// Sources
	"source_engine":                "sources.engine",
	"books_path":                   "sources.items_path",
	"ratings_path":                 "sources.ratings_path",
	"users_path":                   "sources.raters_path",
	"source_delimiter":             "sources.delimiter",
	"source_encoding":              "sources.encoding",
	"source_row_cap":               "sources.row_cap",
	"source_http_timeout":          "sources.http_timeout",
	"source_download_dir":          "sources.download_dir",
	"source_breaker_max_requests":  "sources.breaker.max_requests",
	"source_breaker_interval":      "sources.breaker.interval",
	"source_breaker_timeout":       "sources.breaker.timeout",
	"source_breaker_failure_limit": "sources.breaker.failure_threshold",

	// Recommendation engine
	"recommend_enabled":            "recommend.enabled",
	"recommend_build_on_startup":   "recommend.build_on_startup",
	"recommend_rebuild_interval":   "recommend.rebuild_interval",
	"recommend_build_timeout":      "recommend.build_timeout",
	"recommend_min_user_ratings":   "recommend.min_user_ratings",
	"recommend_min_item_ratings":   "recommend.min_item_ratings",
	"recommend_default_k":          "recommend.default_k",
	"recommend_default_top_n":      "recommend.default_top_n",
	"recommend_max_top_n":          "recommend.max_top_n",
	"recommend_similarity_workers": "recommend.similarity_workers",
	"recommend_cache_size":         "recommend.cache_size",
	"recommend_cache_ttl":          "recommend.cache_ttl",

	// Events
	"events_enabled":              "events.enabled",
	"events_backend":              "events.backend",
	"nats_url":                    "events.nats_url",
	"nats_embedded":               "events.embedded_server",
	"nats_embedded_host":          "events.embedded_host",
	"nats_embedded_port":          "events.embedded_port",
	"events_rebuild_topic":        "events.rebuild_topic",
	"events_snapshot_topic":       "events.snapshot_topic",
	"events_min_rebuild_interval": "events.min_rebuild_interval",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - BOOKS_PATH -> sources.items_path
//   - RECOMMEND_DEFAULT_K -> recommend.default_k
//   - NATS_URL -> events.nats_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables
	// never pollute the config.
	return ""
}
