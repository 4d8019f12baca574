// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/bookshelf/internal/logging"
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	minJWTSecretLength   = 32
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateEvents()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}
	if c.Security.AdminEnabled() && c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive when JWT_SECRET is set")
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d (got %d)",
			minRateLimitRequests, maxRateLimitRequests, c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v (got %v)",
			minRateLimitWindow, maxRateLimitWindow, c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateCORS() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must contain at least one origin")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			if c.IsProduction() {
				return fmt.Errorf("CORS_ORIGINS cannot be wildcard '*' in production")
			}
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q", origin)
		}
	}
	return nil
}

func (c *Config) validateSources() error {
	s := c.Sources
	switch s.Engine {
	case "csv", "duckdb":
	default:
		return fmt.Errorf("SOURCE_ENGINE must be csv or duckdb (got %q)", s.Engine)
	}
	if s.ItemsPath == "" || s.RatingsPath == "" || s.RatersPath == "" {
		return fmt.Errorf("BOOKS_PATH, RATINGS_PATH and USERS_PATH are required")
	}
	if utf8.RuneCountInString(s.Delimiter) != 1 {
		return fmt.Errorf("SOURCE_DELIMITER must be a single character (got %q)", s.Delimiter)
	}
	switch strings.ToLower(s.Encoding) {
	case "latin1", "utf8":
	default:
		return fmt.Errorf("SOURCE_ENCODING must be latin1 or utf8 (got %q)", s.Encoding)
	}
	if s.RowCap < 0 {
		return fmt.Errorf("SOURCE_ROW_CAP must be non-negative")
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("SOURCE_HTTP_TIMEOUT must be positive")
	}
	if s.Breaker.MaxRequests == 0 {
		return fmt.Errorf("SOURCE_BREAKER_MAX_REQUESTS must be at least 1")
	}
	if s.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("SOURCE_BREAKER_FAILURE_LIMIT must be at least 1")
	}
	if s.Breaker.Timeout <= 0 {
		return fmt.Errorf("SOURCE_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if !r.Enabled {
		return nil
	}
	if r.RebuildInterval < 0 {
		return fmt.Errorf("RECOMMEND_REBUILD_INTERVAL must be non-negative (0 disables periodic rebuilds)")
	}
	if r.BuildTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_BUILD_TIMEOUT must be positive")
	}
	if r.MinUserRatings < 0 || r.MinItemRatings < 0 {
		return fmt.Errorf("RECOMMEND_MIN_USER_RATINGS and RECOMMEND_MIN_ITEM_RATINGS must be non-negative")
	}
	if r.DefaultK < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_K must be at least 1")
	}
	if r.MaxTopN < 1 {
		return fmt.Errorf("RECOMMEND_MAX_TOP_N must be at least 1")
	}
	if r.DefaultTopN < 1 || r.DefaultTopN > r.MaxTopN {
		return fmt.Errorf("RECOMMEND_DEFAULT_TOP_N must be between 1 and RECOMMEND_MAX_TOP_N (%d)", r.MaxTopN)
	}
	if r.SimilarityWorkers < 0 {
		return fmt.Errorf("RECOMMEND_SIMILARITY_WORKERS must be non-negative")
	}
	if r.CacheSize < 0 {
		return fmt.Errorf("RECOMMEND_CACHE_SIZE must be non-negative (0 disables the query cache)")
	}
	if r.CacheSize > 0 && r.CacheTTL <= 0 {
		return fmt.Errorf("RECOMMEND_CACHE_TTL must be positive when the query cache is enabled")
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := c.Events
	if !e.Enabled {
		return nil
	}
	switch e.Backend {
	case "gochannel":
	case "nats":
		if e.NATSURL == "" && !e.EmbeddedServer {
			return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats without an embedded server")
		}
		if e.EmbeddedServer && (e.EmbeddedPort < 1 || e.EmbeddedPort > 65535) {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel or nats (got %q)", e.Backend)
	}
	if e.RebuildTopic == "" || e.SnapshotTopic == "" {
		return fmt.Errorf("EVENTS_REBUILD_TOPIC and EVENTS_SNAPSHOT_TOPIC are required")
	}
	if e.RebuildTopic == e.SnapshotTopic {
		return fmt.Errorf("EVENTS_REBUILD_TOPIC and EVENTS_SNAPSHOT_TOPIC must differ")
	}
	if e.MinRebuildInterval < 0 {
		return fmt.Errorf("EVENTS_MIN_REBUILD_INTERVAL must be non-negative")
	}
	return nil
}
