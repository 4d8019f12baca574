// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/bookshelf/internal/config"
	"github.com/tomtom215/bookshelf/internal/metrics"
)

// breakerName labels the download circuit breaker in metrics.
const breakerName = "source-download"

// IsRemote reports whether path is an http(s) URL.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetcher downloads remote source files behind a circuit breaker.
//
// The breaker uses real time for its interval and timeout. Tests exercise
// it through failure counts rather than waiting out the timeout.
type Fetcher struct {
	client *http.Client
	cb     *gobreaker.CircuitBreaker[string]
	dir    string
	logger zerolog.Logger
}

// NewFetcher creates a fetcher from the sources configuration. The breaker
// opens after FailureThreshold consecutive failures and allows MaxRequests
// probes once Timeout has passed.
func NewFetcher(cfg *config.SourcesConfig, logger zerolog.Logger) *Fetcher {
	logger = logger.With().Str("component", "source-fetcher").Logger()

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	threshold := cfg.Breaker.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Fetcher{
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		cb:     cb,
		dir:    cfg.DownloadDir,
		logger: logger,
	}
}

// State returns the breaker state.
func (f *Fetcher) State() gobreaker.State {
	return f.cb.State()
}

// Fetch downloads url into a temporary file and returns its path. The
// caller removes the file when done.
func (f *Fetcher) Fetch(ctx context.Context, stream Stream, url string) (string, error) {
	path, err := f.cb.Execute(func() (string, error) {
		return f.download(ctx, stream, url)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			f.logger.Warn().Err(err).Str("stream", string(stream)).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
			counts := f.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(counts.ConsecutiveFailures))
		}
		return "", fmt.Errorf("fetch %s: %w", stream, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
	return path, nil
}

func (f *Fetcher) download(ctx context.Context, stream Stream, url string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // body fully consumed below

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.CreateTemp(f.dir, "bookshelf-"+string(stream)+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}

	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(out.Name()) //nolint:errcheck,gosec // best-effort cleanup on error path
		return "", fmt.Errorf("failed to write download: %w", err)
	}

	f.logger.Debug().
		Str("stream", string(stream)).
		Int64("bytes", n).
		Dur("duration", time.Since(start)).
		Msg("Downloaded source file")
	return out.Name(), nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
