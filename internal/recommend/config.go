// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"fmt"
	"time"
)

// Config holds engine settings.
type Config struct {
	// RowCap limits records read from each source stream. 0 = no cap.
	RowCap int

	// MinUserRatings is the density filter's per-user threshold.
	MinUserRatings int

	// MinItemRatings is the density filter's per-item threshold.
	MinItemRatings int

	// DefaultK is the neighborhood size used when a request gives none.
	DefaultK int

	// DefaultTopN is the result count used when a request gives none.
	DefaultTopN int

	// SimilarityWorkers bounds similarity goroutines. 0 = GOMAXPROCS.
	SimilarityWorkers int

	// BuildTimeout bounds a single build.
	BuildTimeout time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		RowCap:         50000,
		MinUserRatings: 2,
		MinItemRatings: 1,
		DefaultK:       10,
		DefaultTopN:    10,
		BuildTimeout:   30 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RowCap < 0 {
		return fmt.Errorf("row_cap must be non-negative, got %d", c.RowCap)
	}
	if c.MinUserRatings < 0 {
		return fmt.Errorf("min_user_ratings must be non-negative, got %d", c.MinUserRatings)
	}
	if c.MinItemRatings < 0 {
		return fmt.Errorf("min_item_ratings must be non-negative, got %d", c.MinItemRatings)
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.DefaultTopN < 1 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.SimilarityWorkers < 0 {
		return fmt.Errorf("similarity_workers must be non-negative, got %d", c.SimilarityWorkers)
	}
	if c.BuildTimeout <= 0 {
		return fmt.Errorf("build_timeout must be positive, got %v", c.BuildTimeout)
	}
	return nil
}

func (c *Config) joinConfig() JoinConfig {
	return JoinConfig{
		RowCap:         c.RowCap,
		MinUserRatings: c.MinUserRatings,
		MinItemRatings: c.MinItemRatings,
	}
}
