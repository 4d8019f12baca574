// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Snapshot is one immutable, fully built catalog/matrix/similarity bundle.
// It is never modified after BuildSnapshot returns and is safe for
// concurrent reads without locking.
type Snapshot struct {
	ID      string
	BuiltAt time.Time

	// Items is the deduplicated catalog in source order.
	Items []ItemRecord

	Matrix     *RatingMatrix
	Means      []float64
	Similarity *SimilarityMatrix
	Report     BuildReport

	itemByID     map[string]int
	lowerTitles  []string
	lowerAuthors []string
}

// BuildSnapshot runs the full pipeline: join, matrix, normalize, similarity.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func BuildSnapshot(ctx context.Context, src *SourceData, cfg *Config, logger zerolog.Logger) (*Snapshot, error) {
	start := time.Now()

	joined, err := JoinDataset(src, cfg.joinConfig(), logger)
	if err != nil {
		return nil, err
	}

	m, err := BuildMatrix(joined.Triples)
	if err != nil {
		return nil, err
	}

	centered := Normalize(m)

	sim, err := ComputeSimilarity(ctx, centered, cfg.SimilarityWorkers)
	if err != nil {
		return nil, fmt.Errorf("compute similarity: %w", err)
	}

	s := &Snapshot{
		ID:         uuid.New().String(),
		BuiltAt:    time.Now(),
		Matrix:     m,
		Means:      centered.Means,
		Similarity: sim,
	}
	s.indexCatalog(capRows(src.Items, cfg.RowCap))

	s.Report = BuildReport{
		SnapshotID: s.ID,
		BuiltAt:    s.BuiltAt,
		Duration:   time.Since(start),
		Join:       joined.Stats,
		Users:      m.Rows(),
		Items:      m.Cols(),
		NonZero:    m.NonZero(),
		Sparsity:   m.Sparsity(),
		Catalog:    len(s.Items),
	}

	logger.Info().
		Str("snapshot_id", s.ID).
		Int("users", s.Report.Users).
		Int("items", s.Report.Items).
		Int("non_zero", s.Report.NonZero).
		Float64("sparsity", s.Report.Sparsity).
		Msg("rating matrix built")

	return s, nil
}

// indexCatalog keeps the first record per item identifier.
func (s *Snapshot) indexCatalog(items []ItemRecord) {
	s.itemByID = make(map[string]int, len(items))
	s.Items = make([]ItemRecord, 0, len(items))
	s.lowerTitles = make([]string, 0, len(items))
	s.lowerAuthors = make([]string, 0, len(items))
	for _, it := range items {
		if it.ItemID == "" {
			continue
		}
		if _, dup := s.itemByID[it.ItemID]; dup {
			continue
		}
		s.itemByID[it.ItemID] = len(s.Items)
		s.Items = append(s.Items, it)
		s.lowerTitles = append(s.lowerTitles, strings.ToLower(it.Title))
		s.lowerAuthors = append(s.lowerAuthors, strings.ToLower(it.Author))
	}
}

// Item looks up a catalog record by identifier.
func (s *Snapshot) Item(id string) (ItemRecord, bool) {
	i, ok := s.itemByID[id]
	if !ok {
		return ItemRecord{}, false
	}
	return s.Items[i], true
}

// SearchItems returns catalog records whose title or author contains query
// case-insensitively, paginated, along with the total match count.
// An empty query matches every record.
func (s *Snapshot) SearchItems(query string, offset, limit int) ([]ItemRecord, int) {
	q := strings.ToLower(query)
	var matches []ItemRecord
	total := 0
	for i, t := range s.lowerTitles {
		if q != "" && !strings.Contains(t, q) && !strings.Contains(s.lowerAuthors[i], q) {
			continue
		}
		if total >= offset && (limit <= 0 || len(matches) < limit) {
			matches = append(matches, s.Items[i])
		}
		total++
	}
	return matches, total
}

// Rated reports whether the item has a column in the rating matrix.
func (s *Snapshot) Rated(id string) bool {
	_, ok := s.Matrix.ItemColumn(id)
	return ok
}
