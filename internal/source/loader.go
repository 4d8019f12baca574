// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/bookshelf/internal/config"
	"github.com/tomtom215/bookshelf/internal/metrics"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// Loader reads the three source tables and implements recommend.DataProvider.
type Loader struct {
	cfg     config.SourcesConfig
	reader  TableReader
	fetcher *Fetcher
	logger  zerolog.Logger
}

var _ recommend.DataProvider = (*Loader)(nil)

// NewLoader creates a loader using the engine named in cfg.
func NewLoader(cfg *config.SourcesConfig, logger zerolog.Logger) (*Loader, error) {
	delim, _ := utf8.DecodeRuneInString(cfg.Delimiter)
	if delim == utf8.RuneError {
		delim = ';'
	}

	var reader TableReader
	switch cfg.Engine {
	case "", "csv":
		reader = NewCSVReader(delim, cfg.Encoding, cfg.RowCap)
	case "duckdb":
		r, err := NewDuckDBReader(delim, cfg.Encoding, cfg.RowCap)
		if err != nil {
			return nil, err
		}
		reader = r
	default:
		return nil, fmt.Errorf("unknown source engine %q", cfg.Engine)
	}

	return NewLoaderWithReader(cfg, reader, logger), nil
}

// NewLoaderWithReader creates a loader around an existing TableReader.
func NewLoaderWithReader(cfg *config.SourcesConfig, reader TableReader, logger zerolog.Logger) *Loader {
	return &Loader{
		cfg:     *cfg,
		reader:  reader,
		fetcher: NewFetcher(cfg, logger),
		logger:  logger.With().Str("component", "source-loader").Logger(),
	}
}

// Close releases the table reader when it holds resources.
func (l *Loader) Close() error {
	if c, ok := l.reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Load reads items, ratings and raters concurrently. The first failure
// cancels the other streams.
func (l *Loader) Load(ctx context.Context) (*recommend.SourceData, error) {
	start := time.Now()
	data := &recommend.SourceData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Items, err = loadStream(gctx, l, StreamItems, l.cfg.ItemsPath, DecodeItems)
		return err
	})
	g.Go(func() error {
		var err error
		data.Ratings, err = loadStream(gctx, l, StreamRatings, l.cfg.RatingsPath, DecodeRatings)
		return err
	})
	g.Go(func() error {
		var err error
		data.Raters, err = loadStream(gctx, l, StreamRaters, l.cfg.RatersPath, DecodeRaters)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info().
		Int("items", len(data.Items)).
		Int("ratings", len(data.Ratings)).
		Int("raters", len(data.Raters)).
		Dur("duration", time.Since(start)).
		Msg("Source tables loaded")
	return data, nil
}

func loadStream[T any](
	ctx context.Context,
	l *Loader,
	stream Stream,
	path string,
	decode func(*Table) ([]T, int, error),
) ([]T, error) {
	start := time.Now()

	local := path
	if IsRemote(path) {
		downloaded, err := l.fetcher.Fetch(ctx, stream, path)
		if err != nil {
			return nil, err
		}
		defer os.Remove(downloaded) //nolint:errcheck // temp file cleanup
		local = downloaded
	}

	t, err := l.reader.ReadTable(ctx, local)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", stream, err)
	}
	records, skipped, err := decode(t)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", stream, err)
	}
	skipped += t.Malformed

	duration := time.Since(start)
	metrics.RecordSourceLoad(string(stream), len(records), skipped, duration)

	ev := l.logger.Debug()
	if skipped > 0 {
		ev = l.logger.Warn()
	}
	ev.Str("stream", string(stream)).
		Str("path", path).
		Int("rows", len(records)).
		Int("skipped", skipped).
		Dur("duration", duration).
		Msg("Source stream read")
	return records, nil
}
