// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry via promauto at package
init and exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Snapshot builds:
  - snapshot_builds_total{result}
  - snapshot_build_duration_seconds
  - snapshot_users, snapshot_items, snapshot_sparsity
  - snapshot_last_success_timestamp

Queries:
  - recommend_queries_total{outcome}
  - recommend_query_duration_seconds
  - query_cache_hits_total, query_cache_misses_total, query_cache_entries

Sources:
  - source_load_duration_seconds{stream}
  - source_rows_read_total{stream}, source_rows_skipped_total{stream}
  - circuit_breaker_* for remote source downloads

Events:
  - events_published_total{topic}, events_consumed_total{topic}
  - rebuild_requests_throttled_total

Record* helpers wrap the collectors so callers never build label values by
hand.
*/
package metrics
