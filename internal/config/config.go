// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package config

import (
	"strings"
	"time"

	"github.com/tomtom215/bookshelf/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	Sources   SourcesConfig   `koanf:"sources"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds CORS, rate limiting and admin token settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// JWTSecret signs admin tokens. Admin routes are disabled when empty.
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
}

// AdminEnabled reports whether admin routes should be mounted.
func (s SecurityConfig) AdminEnabled() bool {
	return s.JWTSecret != ""
}

// SourcesConfig describes where the three source tables are read from.
// Paths may be local files or http(s) URLs.
type SourcesConfig struct {
	Engine      string        `koanf:"engine"`
	ItemsPath   string        `koanf:"items_path"`
	RatingsPath string        `koanf:"ratings_path"`
	RatersPath  string        `koanf:"raters_path"`
	Delimiter   string        `koanf:"delimiter"`
	Encoding    string        `koanf:"encoding"`
	RowCap      int           `koanf:"row_cap"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
	DownloadDir string        `koanf:"download_dir"`
	Breaker     BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker guarding remote downloads.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// RecommendConfig holds snapshot build and query settings.
type RecommendConfig struct {
	Enabled           bool          `koanf:"enabled"`
	BuildOnStartup    bool          `koanf:"build_on_startup"`
	RebuildInterval   time.Duration `koanf:"rebuild_interval"`
	BuildTimeout      time.Duration `koanf:"build_timeout"`
	MinUserRatings    int           `koanf:"min_user_ratings"`
	MinItemRatings    int           `koanf:"min_item_ratings"`
	DefaultK          int           `koanf:"default_k"`
	DefaultTopN       int           `koanf:"default_top_n"`
	MaxTopN           int           `koanf:"max_top_n"`
	SimilarityWorkers int           `koanf:"similarity_workers"`
	CacheSize         int           `koanf:"cache_size"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
}

// EngineConfig converts the recommend section into engine settings.
func (r RecommendConfig) EngineConfig(rowCap int) *recommend.Config {
	return &recommend.Config{
		RowCap:            rowCap,
		MinUserRatings:    r.MinUserRatings,
		MinItemRatings:    r.MinItemRatings,
		DefaultK:          r.DefaultK,
		DefaultTopN:       r.DefaultTopN,
		SimilarityWorkers: r.SimilarityWorkers,
		BuildTimeout:      r.BuildTimeout,
	}
}

// EventsConfig holds Watermill bus settings.
type EventsConfig struct {
	Enabled            bool          `koanf:"enabled"`
	Backend            string        `koanf:"backend"`
	NATSURL            string        `koanf:"nats_url"`
	EmbeddedServer     bool          `koanf:"embedded_server"`
	EmbeddedHost       string        `koanf:"embedded_host"`
	EmbeddedPort       int           `koanf:"embedded_port"`
	RebuildTopic       string        `koanf:"rebuild_topic"`
	SnapshotTopic      string        `koanf:"snapshot_topic"`
	MinRebuildInterval time.Duration `koanf:"min_rebuild_interval"`
}

// IsProduction reports whether the server runs in a production environment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}
