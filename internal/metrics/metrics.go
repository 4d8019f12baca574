// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Snapshot Build Metrics
	SnapshotBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_builds_total",
			Help: "Total number of snapshot builds by result",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_build_duration_seconds",
			Help:    "Duration of snapshot builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	SnapshotUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_users",
			Help: "Number of user rows in the published rating matrix",
		},
	)

	SnapshotItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_items",
			Help: "Number of item columns in the published rating matrix",
		},
	)

	SnapshotSparsity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_sparsity",
			Help: "Fraction of unrated cells in the published rating matrix",
		},
	)

	SnapshotLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_last_success_timestamp",
			Help: "Unix timestamp of the last successful snapshot build",
		},
	)

	// Query Metrics
	RecommendQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_queries_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome"}, // "ok" or a failure kind
	)

	RecommendQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Recommendation query duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	QueryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	QueryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	QueryCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "query_cache_entries",
			Help: "Current number of cached recommendation results",
		},
	)

	QueryCacheHitRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "query_cache_hit_rate",
			Help: "Recommendation cache hit rate percentage since startup",
		},
	)

	QueryCacheExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_cache_expired_total",
			Help: "Total number of expired cache entries reclaimed by sweeps",
		},
	)

	// Source Metrics
	SourceLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_load_duration_seconds",
			Help:    "Duration of source stream loads in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"stream"},
	)

	SourceRowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_rows_read_total",
			Help: "Total number of source rows accepted",
		},
		[]string{"stream"},
	)

	SourceRowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_rows_skipped_total",
			Help: "Total number of malformed source rows skipped",
		},
		[]string{"stream"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed",
		},
		[]string{"topic"},
	)

	RebuildRequestsThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rebuild_requests_throttled_total",
			Help: "Total number of rebuild requests dropped by the rate limiter",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordSnapshotBuild records a finished build. Shape gauges only move on success.
func RecordSnapshotBuild(duration time.Duration, users, items int, sparsity float64, err error) {
	SnapshotBuildDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotBuildsTotal.WithLabelValues("failure").Inc()
		return
	}
	SnapshotBuildsTotal.WithLabelValues("success").Inc()
	SnapshotUsers.Set(float64(users))
	SnapshotItems.Set(float64(items))
	SnapshotSparsity.Set(sparsity)
	SnapshotLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordSnapshotBuildSkipped records a build request refused because another
// build was running.
func RecordSnapshotBuildSkipped() {
	SnapshotBuildsTotal.WithLabelValues("skipped").Inc()
}

// RecordQuery records a recommendation query. outcome is "ok" or the
// failure kind name.
func RecordQuery(outcome string, duration time.Duration) {
	RecommendQueriesTotal.WithLabelValues(outcome).Inc()
	RecommendQueryDuration.Observe(duration.Seconds())
}

// RecordCacheHit records a query cache hit
func RecordCacheHit() {
	QueryCacheHits.Inc()
}

// RecordCacheMiss records a query cache miss
func RecordCacheMiss() {
	QueryCacheMisses.Inc()
}

// SetCacheSize sets the current query cache entry count
func SetCacheSize(n int) {
	QueryCacheSize.Set(float64(n))
}

// SetCacheHitRate sets the query cache hit rate percentage
func SetCacheHitRate(rate float64) {
	QueryCacheHitRate.Set(rate)
}

// RecordCacheSweep records expired entries removed by one sweep
func RecordCacheSweep(removed int) {
	QueryCacheExpired.Add(float64(removed))
}

// RecordSourceLoad records one stream load
func RecordSourceLoad(stream string, rows, skipped int, duration time.Duration) {
	SourceLoadDuration.WithLabelValues(stream).Observe(duration.Seconds())
	SourceRowsRead.WithLabelValues(stream).Add(float64(rows))
	SourceRowsSkipped.WithLabelValues(stream).Add(float64(skipped))
}

// RecordEventPublished records a published event
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventConsumed records a consumed event
func RecordEventConsumed(topic string) {
	EventsConsumed.WithLabelValues(topic).Inc()
}

// RecordRebuildThrottled records a rebuild request dropped by the limiter
func RecordRebuildThrottled() {
	RebuildRequestsThrottled.Inc()
}
