// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/auth"
	"github.com/tomtom215/bookshelf/internal/events"
	"github.com/tomtom215/bookshelf/internal/logging"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// defaultRebuildReason is recorded when the caller gives none.
const defaultRebuildReason = "admin request"

// snapshotStatusPath is where callers poll for the outcome of a rebuild.
const snapshotStatusPath = "/api/v1/snapshot"

// Rebuild status values.
const (
	RebuildStatusQueued   = "queued"
	RebuildStatusBuilding = "building"
)

// RebuildQueued is the 202 body of an accepted rebuild.
type RebuildQueued struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

// Rebuild handles POST /api/v1/admin/rebuild. An accepted request gets 202:
// with an event bus it is queued for the rebuild subscriber, otherwise the
// build starts in the background. The outcome is reported by
// GET /api/v1/snapshot.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RebuildRequest
	if err := decodeJSONBody(w, r, &req, true); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = defaultRebuildReason
	}
	requestedBy := "unknown"
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		requestedBy = claims.Username
	}
	logger := logging.Ctx(r.Context())

	if h.publisher != nil {
		event := events.NewRebuildRequested(reason, requestedBy)
		if err := h.publisher.PublishRebuild(r.Context(), event); err != nil {
			logger.Error().Err(err).Msg("Failed to publish rebuild request")
			rw.ServiceUnavailable("rebuild request could not be queued")
			return
		}
		logger.Info().
			Str("rebuild_request_id", event.RequestID).
			Str("requested_by", requestedBy).
			Msg("Rebuild request queued")
		rw.Accepted(RebuildQueued{RequestID: event.RequestID, Status: RebuildStatusQueued, StatusURL: snapshotStatusPath})
		return
	}

	if h.engine.Status().Building {
		writeEngineError(rw, recommend.ErrBuildInProgress)
		return
	}

	requestID := uuid.NewString()
	h.startBuild(logger.With().Str("rebuild_request_id", requestID).Logger(), "api:"+requestedBy)
	logger.Info().
		Str("rebuild_request_id", requestID).
		Str("requested_by", requestedBy).
		Msg("Rebuild started in background")
	rw.Accepted(RebuildQueued{RequestID: requestID, Status: RebuildStatusBuilding, StatusURL: snapshotStatusPath})
}

// startBuild runs one rebuild detached from the request. The build outlives
// the response and is bounded by the build timeout and by Close.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (h *Handler) startBuild(logger zerolog.Logger, trigger string) {
	h.builds.Add(1)
	go func() {
		defer h.builds.Done()

		ctx, cancel := context.WithTimeout(h.background, h.buildTimeout())
		defer cancel()

		snap, err := h.rebuilder.Rebuild(ctx, trigger)
		if err != nil {
			logger.Warn().Err(err).Str("kind", recommend.KindOf(err).String()).Msg("Background rebuild failed")
			return
		}
		logger.Info().Str("snapshot_id", snap.ID).Msg("Background rebuild complete")
	}()
}

func (h *Handler) buildTimeout() time.Duration {
	if h.config.BuildTimeout > 0 {
		return h.config.BuildTimeout
	}
	return 30 * time.Minute
}
