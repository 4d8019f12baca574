// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package middleware provides the HTTP middleware shared by the API router.

Components:

  - RequestID: X-Request-ID propagation with request and correlation IDs
    attached to the logging context
  - PrometheusMetrics: request counts, latency and in-flight gauge, labeled
    by chi route pattern so path parameters do not explode label cardinality
  - AccessLog: one structured zerolog line per request

Typical order inside a chi router:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

All middleware is safe for concurrent use.
*/
package middleware
