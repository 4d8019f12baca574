// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrBuildInProgress is returned by Build when another build holds the lock.
var ErrBuildInProgress = errors.New("build already in progress")

// Engine owns the published snapshot and serializes builds. Queries read
// the current snapshot without locking; a build publishes a new one by a
// single pointer swap. It is safe for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	provider DataProvider

	current atomic.Pointer[Snapshot]

	buildMu  sync.Mutex
	building atomic.Bool

	builds       atomic.Int64
	failedBuilds atomic.Int64
	queries      atomic.Int64

	stateMu       sync.RWMutex
	lastErr       string
	lastAttemptAt time.Time

	hooksMu sync.RWMutex
	hooks   []func(*Snapshot)
}

// NewEngine creates an engine. No snapshot is published until Build succeeds.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, provider DataProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("data provider is required")
	}
	return &Engine{
		config:   cfg,
		provider: provider,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// OnPublish registers fn to be called after each snapshot is published.
// Hooks run synchronously on the building goroutine.
func (e *Engine) OnPublish(fn func(*Snapshot)) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// Build loads source data, builds a snapshot and publishes it. Only one
// build runs at a time; a concurrent call returns ErrBuildInProgress. On
// failure the previously published snapshot stays in place.
func (e *Engine) Build(ctx context.Context) (*Snapshot, error) {
	if !e.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer e.buildMu.Unlock()

	e.building.Store(true)
	defer e.building.Store(false)

	start := time.Now()
	e.stateMu.Lock()
	e.lastAttemptAt = start
	e.stateMu.Unlock()

	e.logger.Info().Msg("starting snapshot build")

	buildCtx, cancel := context.WithTimeout(ctx, e.config.BuildTimeout)
	defer cancel()

	snap, err := e.build(buildCtx)
	if err != nil {
		e.failedBuilds.Add(1)
		e.setLastError(err.Error())
		e.logger.Error().Err(err).Str("kind", KindOf(err).String()).Msg("snapshot build failed")
		return nil, err
	}

	e.current.Store(snap)
	e.builds.Add(1)
	e.setLastError("")

	e.logger.Info().
		Str("snapshot_id", snap.ID).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("snapshot published")

	e.hooksMu.RLock()
	hooks := e.hooks
	e.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(snap)
	}
	return snap, nil
}

func (e *Engine) build(ctx context.Context) (*Snapshot, error) {
	src, err := e.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load source data: %w", err)
	}
	return BuildSnapshot(ctx, src, e.config, e.logger)
}

// Snapshot returns the published snapshot, or nil before the first build.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Recommend answers a query against the current snapshot. Non-positive K and
// TopN take the configured defaults.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	e.queries.Add(1)

	snap := e.current.Load()
	if snap == nil {
		return nil, &Error{Kind: KindDataNotLoaded, Query: req.Title}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.K <= 0 {
		req.K = e.config.DefaultK
	}
	if req.TopN <= 0 {
		req.TopN = e.config.DefaultTopN
	}

	res, err := snap.Recommend(req)
	if err != nil {
		e.logger.Debug().
			Str("query", req.Title).
			Str("kind", KindOf(err).String()).
			Msg("recommendation query failed")
		return nil, err
	}
	return res, nil
}

// Status reports the engine's current state.
func (e *Engine) Status() Status {
	e.stateMu.RLock()
	st := Status{
		LastError:     e.lastErr,
		LastAttemptAt: e.lastAttemptAt,
	}
	e.stateMu.RUnlock()

	st.Building = e.building.Load()
	st.Builds = e.builds.Load()
	st.FailedBuilds = e.failedBuilds.Load()
	st.Queries = e.queries.Load()
	if snap := e.current.Load(); snap != nil {
		st.Loaded = true
		report := snap.Report
		st.Current = &report
	}
	return st
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

func (e *Engine) setLastError(msg string) {
	e.stateMu.Lock()
	e.lastErr = msg
	e.stateMu.Unlock()
}
