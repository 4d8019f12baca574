// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/recommend"
)

// Rebuilder runs a snapshot build. Satisfied by *BuildRunner.
type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (*recommend.Snapshot, error)
}

// BuildServiceConfig holds configuration for the build service.
type BuildServiceConfig struct {
	// BuildOnStartup builds a snapshot as soon as the service starts.
	BuildOnStartup bool

	// RebuildInterval is how often to rebuild. Zero disables scheduled
	// rebuilds.
	RebuildInterval time.Duration
}

// BuildService owns the snapshot build schedule: one build on startup and
// then one per RebuildInterval. Failed builds are logged and retried on
// the next tick; the previous snapshot keeps serving.
type BuildService struct {
	runner Rebuilder
	config BuildServiceConfig
	logger zerolog.Logger
	name   string
}

// NewBuildService creates a build service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuildService(runner Rebuilder, cfg BuildServiceConfig, logger zerolog.Logger) *BuildService {
	return &BuildService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "build").Logger(),
		name:   "build-service",
	}
}

// Serve implements suture.Service.
func (s *BuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("build_on_startup", s.config.BuildOnStartup).
		Dur("rebuild_interval", s.config.RebuildInterval).
		Msg("build service starting")

	if s.config.BuildOnStartup {
		if _, err := s.runner.Rebuild(ctx, "startup"); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("initial build failed (will retry on schedule)")
		}
	}

	if s.config.RebuildInterval <= 0 {
		<-ctx.Done()
		s.logger.Info().Msg("build service shutting down")
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RebuildInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("build service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled rebuild triggered")
			// Failures are recorded by the runner.
			_, _ = s.runner.Rebuild(ctx, "schedule")
		}
	}
}

// String returns the service name for logging.
func (s *BuildService) String() string {
	return s.name
}
