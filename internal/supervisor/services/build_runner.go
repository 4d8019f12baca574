// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/metrics"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// SnapshotBuilder builds and publishes an engine snapshot.
// Satisfied by *recommend.Engine.
type SnapshotBuilder interface {
	Build(ctx context.Context) (*recommend.Snapshot, error)
}

// BuildRunner is the single entry point for snapshot builds. The build
// service, the rebuild subscriber and the admin API all go through it, so
// build metrics and logs are recorded in one place.
type BuildRunner struct {
	builder SnapshotBuilder
	logger  zerolog.Logger
}

// NewBuildRunner creates a runner around builder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuildRunner(builder SnapshotBuilder, logger zerolog.Logger) *BuildRunner {
	return &BuildRunner{
		builder: builder,
		logger:  logger.With().Str("component", "build-runner").Logger(),
	}
}

// Rebuild builds a new snapshot. trigger names what asked for the build,
// such as "startup", "schedule" or "api:alice". A build that loses the
// race against one already running returns recommend.ErrBuildInProgress
// and is counted as skipped.
func (r *BuildRunner) Rebuild(ctx context.Context, trigger string) (*recommend.Snapshot, error) {
	start := time.Now()
	snap, err := r.builder.Build(ctx)
	duration := time.Since(start)

	switch {
	case errors.Is(err, recommend.ErrBuildInProgress):
		metrics.RecordSnapshotBuildSkipped()
		r.logger.Info().Str("trigger", trigger).Msg("Build skipped, another build is running")
		return nil, err

	case err != nil:
		metrics.RecordSnapshotBuild(duration, 0, 0, 0, err)
		r.logger.Warn().Err(err).
			Str("trigger", trigger).
			Str("kind", recommend.KindOf(err).String()).
			Dur("duration", duration).
			Msg("Build failed, previous snapshot kept")
		return nil, err
	}

	rep := snap.Report
	metrics.RecordSnapshotBuild(duration, rep.Users, rep.Items, rep.Sparsity, nil)
	r.logger.Info().
		Str("trigger", trigger).
		Str("snapshot_id", snap.ID).
		Int("users", rep.Users).
		Int("items", rep.Items).
		Dur("duration", duration).
		Msg("Build complete")
	return snap, nil
}
