// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only once a snapshot is published and queries can be served.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := h.engine.Status()
	data := map[string]interface{}{
		"ready":    status.Loaded,
		"building": status.Building,
		"uptime":   time.Since(h.startTime).Seconds(),
	}
	if status.LastError != "" {
		data["last_error"] = status.LastError
	}

	statusCode := http.StatusOK
	meta := &APIMeta{}
	if status.Current != nil {
		meta.SnapshotID = status.Current.SnapshotID
	}
	if !status.Loaded {
		statusCode = http.StatusServiceUnavailable
	}
	rw.writeJSON(statusCode, APIResponse{
		Success: status.Loaded,
		Data:    data,
		Meta:    rw.meta(meta),
	})
}
