// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"github.com/rs/zerolog"
)

// MinJoinedRows is the row floor below which a build is refused and below
// which the density filter falls back to the unfiltered join.
const MinJoinedRows = 10

// JoinConfig controls the dataset join and density filter.
type JoinConfig struct {
	// RowCap limits how many records of each stream are considered. 0 = no cap.
	RowCap int

	// MinUserRatings is the per-user rating count a user needs to be kept.
	MinUserRatings int

	// MinItemRatings is the per-item rating count an item needs to be kept.
	MinItemRatings int
}

// JoinedDataset is the filtered, ordered triple stream a matrix is built from.
// Every triple's ItemID resolves against the item table and every UserID
// against the rater table.
type JoinedDataset struct {
	Triples []RatingTriple
	Stats   JoinStats
}

// JoinDataset joins ratings against items and raters and applies the
// adaptive density filter.
//
// Ratings ≤ 0 are dropped, as are ratings whose item or rater is unknown.
// If fewer than MinJoinedRows remain, an InsufficientSourceData error is
// returned. Filtering falls back stage by stage rather than failing: an
// empty user filter keeps every joined row, an empty item filter keeps the
// user-filtered rows, and a filtered set under the floor reverts to the full
// join.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func JoinDataset(src *SourceData, cfg JoinConfig, logger zerolog.Logger) (*JoinedDataset, error) {
	items := capRows(src.Items, cfg.RowCap)
	ratings := capRows(src.Ratings, cfg.RowCap)
	raters := capRows(src.Raters, cfg.RowCap)

	stats := JoinStats{
		SourceItems:   len(items),
		SourceRatings: len(ratings),
		SourceRaters:  len(raters),
	}

	itemSet := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ItemID != "" {
			itemSet[it.ItemID] = struct{}{}
		}
	}
	raterSet := make(map[string]struct{}, len(raters))
	for _, r := range raters {
		if r.UserID != "" {
			raterSet[r.UserID] = struct{}{}
		}
	}

	joined := make([]RatingTriple, 0, len(ratings))
	for _, r := range ratings {
		if r.Rating <= 0 {
			continue
		}
		stats.Positive++
		if _, ok := itemSet[r.ItemID]; !ok {
			continue
		}
		stats.ItemJoined++
		if _, ok := raterSet[r.UserID]; !ok {
			continue
		}
		joined = append(joined, r)
	}
	stats.RaterJoined = len(joined)

	logger.Info().
		Int("items", stats.SourceItems).
		Int("ratings", stats.SourceRatings).
		Int("raters", stats.SourceRaters).
		Int("positive", stats.Positive).
		Int("item_joined", stats.ItemJoined).
		Int("rater_joined", stats.RaterJoined).
		Msg("source streams joined")

	if len(joined) < MinJoinedRows {
		return nil, &Error{Kind: KindInsufficientSourceData, Rows: len(joined), Min: MinJoinedRows}
	}

	userFiltered := filterByCount(joined, cfg.MinUserRatings, func(t RatingTriple) string { return t.UserID })
	if len(userFiltered) == 0 {
		logger.Warn().Int("min_user_ratings", cfg.MinUserRatings).Msg("no users meet minimum rating criteria, using all users")
		userFiltered = joined
		stats.Fallbacks = append(stats.Fallbacks, FallbackUser)
	}

	filtered := filterByCount(userFiltered, cfg.MinItemRatings, func(t RatingTriple) string { return t.ItemID })
	if len(filtered) == 0 {
		logger.Warn().Int("min_item_ratings", cfg.MinItemRatings).Msg("no books meet minimum rating criteria, using all books")
		filtered = userFiltered
		stats.Fallbacks = append(stats.Fallbacks, FallbackItem)
	}

	if len(filtered) < MinJoinedRows {
		logger.Warn().Int("filtered", len(filtered)).Msg("very few ratings after filtering, using unfiltered data")
		filtered = joined
		stats.Fallbacks = append(stats.Fallbacks, FallbackFloor)
	}
	stats.Filtered = len(filtered)

	logger.Info().Int("filtered", stats.Filtered).Msg("density filter applied")

	return &JoinedDataset{Triples: filtered, Stats: stats}, nil
}

// filterByCount keeps the triples whose key occurs at least min times,
// preserving order. min ≤ 1 keeps everything.
func filterByCount(triples []RatingTriple, minCount int, key func(RatingTriple) string) []RatingTriple {
	if minCount <= 1 {
		return triples
	}
	counts := make(map[string]int)
	for _, t := range triples {
		counts[key(t)]++
	}
	out := make([]RatingTriple, 0, len(triples))
	for _, t := range triples {
		if counts[key(t)] >= minCount {
			out = append(out, t)
		}
	}
	return out
}

func capRows[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
