// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/events"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// notifyTimeout bounds a single SnapshotPublished publish.
const notifyTimeout = 5 * time.Second

// SnapshotPublisher publishes snapshot notifications. Satisfied by *events.Bus.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, e events.SnapshotPublished) error
}

// SnapshotNotifier returns an engine publish hook that announces each new
// snapshot on the bus. Publish failures are logged and never fail the build.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func SnapshotNotifier(pub SnapshotPublisher, logger zerolog.Logger) func(*recommend.Snapshot) {
	logger = logger.With().Str("component", "snapshot-notifier").Logger()
	return func(snap *recommend.Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := pub.PublishSnapshot(ctx, events.SnapshotPublishedFrom(snap)); err != nil {
			logger.Warn().Err(err).Str("snapshot_id", snap.ID).Msg("snapshot notification failed")
		}
	}
}
