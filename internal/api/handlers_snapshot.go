// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"net/http"
)

// SnapshotStatus handles GET /api/v1/snapshot. It reports the engine
// state even before the first build.
func (h *Handler) SnapshotStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := h.engine.Status()
	meta := &APIMeta{}
	if status.Current != nil {
		meta.SnapshotID = status.Current.SnapshotID
	}
	rw.SuccessWithMeta(http.StatusOK, status, meta)
}
