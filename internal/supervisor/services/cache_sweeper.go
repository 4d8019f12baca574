// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// minSweepInterval keeps a tiny cache TTL from turning the sweep into a
// busy loop.
const minSweepInterval = time.Second

// CacheSweeper reclaims expired cache entries. Satisfied by *api.Handler.
type CacheSweeper interface {
	SweepCache() int
}

// CacheSweepService periodically sweeps expired query results so the cache
// gauges track live entries between snapshot publishes.
type CacheSweepService struct {
	sweeper  CacheSweeper
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheSweepService creates the sweeper. Intervals below one second are
// raised to one second.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweepService(sweeper CacheSweeper, interval time.Duration, logger zerolog.Logger) *CacheSweepService {
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	return &CacheSweepService{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With().Str("service", "cache-sweeper").Logger(),
		name:     "cache-sweeper",
	}
}

// Serve implements suture.Service.
func (s *CacheSweepService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.sweeper.SweepCache(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("expired cache entries reclaimed")
			}
		}
	}
}

// String returns the service name for logging.
func (s *CacheSweepService) String() string {
	return s.name
}
