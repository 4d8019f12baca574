// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package api serves the bookshelf HTTP API on a chi router.

Endpoints (all under /api/v1 unless noted):

	POST /recommendations/            {"book_title": "...", "top_n": 10, "k": 10}
	GET  /recommendations/by-title    ?book_title=&top_n=&k=
	GET  /catalog/books               ?search=&offset=&limit=
	GET  /catalog/books/{isbn}
	GET  /snapshot                    engine status and current build report
	POST /admin/rebuild               202, poll /snapshot; admin JWT, mounted only with JWT_SECRET
	GET  /health/live
	GET  /health/ready                503 until the first snapshot is published
	GET  /metrics                     Prometheus exposition (root path)

Every JSON response uses the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "error": {"code": "NOT_FOUND", "message": "...", "details": {"kind": "no_matching_title"}},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3,
	           "snapshot_id": "...", "mode": "anchor-based"}
	}

Recommendations are anchor-based, not personalized: the engine picks the
user who rated the matched book highest and ranks what that user's
neighbors liked. The response meta says so on every recommendation.

Engine failures map to transport status codes in errors.go. Successful
recommendation results are cached per snapshot, title, k and top_n.
*/
package api
