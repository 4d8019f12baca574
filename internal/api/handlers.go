// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/bookshelf/internal/cache"
	"github.com/tomtom215/bookshelf/internal/config"
	"github.com/tomtom215/bookshelf/internal/events"
	"github.com/tomtom215/bookshelf/internal/metrics"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// Engine is the read side of the recommendation engine.
// *recommend.Engine implements it.
type Engine interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
	Snapshot() *recommend.Snapshot
	Status() recommend.Status
}

// Rebuilder runs one snapshot build and returns when it finishes.
type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (*recommend.Snapshot, error)
}

// RebuildPublisher queues a rebuild on the event bus.
// *events.Bus implements it.
type RebuildPublisher interface {
	PublishRebuild(ctx context.Context, e events.RebuildRequested) error
}

// Handler serves the API endpoints.
type Handler struct {
	engine    Engine
	rebuilder Rebuilder
	publisher RebuildPublisher
	cache     *cache.LRU[*recommend.Result]
	config    config.RecommendConfig
	startTime time.Time

	// background owns builds started by the admin API when no event bus
	// is configured. Close cancels it and waits for them.
	background context.Context
	stop       context.CancelFunc
	builds     sync.WaitGroup
}

// NewHandler creates a Handler. publisher may be nil, in which case admin
// rebuilds run in the background through rebuilder. A zero cache size
// disables the query cache.
func NewHandler(engine Engine, rebuilder Rebuilder, publisher RebuildPublisher, cfg *config.RecommendConfig) *Handler {
	background, stop := context.WithCancel(context.Background())
	h := &Handler{
		engine:     engine,
		rebuilder:  rebuilder,
		publisher:  publisher,
		config:     *cfg,
		startTime:  time.Now(),
		background: background,
		stop:       stop,
	}
	if cfg.CacheSize > 0 {
		h.cache = cache.NewLRU[*recommend.Result](cfg.CacheSize, cfg.CacheTTL)
	}
	return h
}

// OnSnapshotPublished drops cached results from older snapshots.
// Register it with Engine.OnPublish.
func (h *Handler) OnSnapshotPublished(_ *recommend.Snapshot) {
	if h.cache == nil {
		return
	}
	h.cache.Clear()
	metrics.SetCacheSize(0)
}

// SweepCache reclaims expired query results and refreshes the cache gauges.
// It returns the number of entries removed.
func (h *Handler) SweepCache() int {
	if h.cache == nil {
		return 0
	}
	removed := h.cache.CleanupExpired()
	metrics.RecordCacheSweep(removed)
	stats := h.cache.Stats()
	metrics.SetCacheSize(stats.Size)
	metrics.SetCacheHitRate(stats.HitRate())
	return removed
}

// Close cancels background builds started by Rebuild and waits for them.
func (h *Handler) Close() {
	h.stop()
	h.builds.Wait()
}
