// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/bookshelf/internal/logging"
	"github.com/tomtom215/bookshelf/internal/metrics"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// queryTimeout bounds a single recommendation query.
const queryTimeout = 10 * time.Second

// Recommend handles POST /api/v1/recommendations/.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RecommendRequest
	if err := decodeJSONBody(w, r, &req, false); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.serveRecommendation(rw, r, req)
}

// RecommendByTitle handles GET /api/v1/recommendations/by-title.
func (h *Handler) RecommendByTitle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseRecommendQuery(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.serveRecommendation(rw, r, req)
}

func (h *Handler) serveRecommendation(rw *ResponseWriter, r *http.Request, req RecommendRequest) {
	if !validateRequest(rw, &req) {
		return
	}

	engineReq := h.engineRequest(req)

	if res, ok := h.cachedResult(engineReq); ok {
		rw.SuccessWithMeta(http.StatusOK, res, &APIMeta{
			SnapshotID: res.SnapshotID,
			Mode:       ModeAnchorBased,
			Cached:     true,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.engine.Recommend(ctx, engineReq)
	if err != nil {
		metrics.RecordQuery(recommend.KindOf(err).String(), time.Since(start))
		logging.Ctx(r.Context()).Debug().
			Err(err).
			Str("book_title", engineReq.Title).
			Msg("Recommendation query failed")
		writeEngineError(rw, err)
		return
	}
	metrics.RecordQuery("ok", time.Since(start))
	h.storeResult(engineReq, res)

	rw.SuccessWithMeta(http.StatusOK, res, &APIMeta{
		SnapshotID: res.SnapshotID,
		Mode:       ModeAnchorBased,
	})
}

// engineRequest applies server defaults and the top_n ceiling.
func (h *Handler) engineRequest(req RecommendRequest) recommend.Request {
	out := recommend.Request{
		Title: strings.TrimSpace(req.BookTitle),
		K:     req.K,
		TopN:  req.TopN,
	}
	if out.K <= 0 {
		out.K = h.config.DefaultK
	}
	if out.TopN <= 0 {
		out.TopN = h.config.DefaultTopN
	}
	if h.config.MaxTopN > 0 && out.TopN > h.config.MaxTopN {
		out.TopN = h.config.MaxTopN
	}
	return out
}

// cacheKey scopes a query to a snapshot so results never outlive the
// snapshot that produced them.
func cacheKey(snapshotID string, req recommend.Request) string {
	return fmt.Sprintf("%s|%s|%d|%d", snapshotID, strings.ToLower(req.Title), req.K, req.TopN)
}

func (h *Handler) cachedResult(req recommend.Request) (*recommend.Result, bool) {
	if h.cache == nil {
		return nil, false
	}
	snap := h.engine.Snapshot()
	if snap == nil {
		return nil, false
	}
	res, ok := h.cache.Get(cacheKey(snap.ID, req))
	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return res, ok
}

func (h *Handler) storeResult(req recommend.Request, res *recommend.Result) {
	if h.cache == nil {
		return
	}
	h.cache.Add(cacheKey(res.SnapshotID, req), res)
	metrics.SetCacheSize(h.cache.Len())
}
