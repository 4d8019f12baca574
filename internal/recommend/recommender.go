// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"sort"
	"strings"
)

// excludedScore marks items the anchor already rated.
const excludedScore = -1.0

// Recommend answers an anchor-based query against the snapshot. The result
// is driven by the user who rated the matched title highest, not by the
// caller's own history. k and topN must be positive; Engine.Recommend
// applies defaults before calling this.
func (s *Snapshot) Recommend(req Request) (*Result, error) {
	item, ok := s.MatchTitle(req.Title)
	if !ok {
		return nil, &Error{Kind: KindNoMatchingTitle, Query: req.Title}
	}

	col, ok := s.Matrix.ItemColumn(item.ItemID)
	if !ok {
		return nil, &Error{Kind: KindItemNotInMatrix, Query: req.Title, ItemID: item.ItemID, Title: item.Title}
	}

	anchor, ok := s.anchorFor(col)
	if !ok {
		return nil, &Error{Kind: KindNoUsersRatedItem, Query: req.Title, ItemID: item.ItemID, Title: item.Title}
	}

	neighbors := s.neighbors(anchor, req.K)
	if len(neighbors) == 0 {
		return nil, &Error{Kind: KindNoSimilarUsers, Query: req.Title, ItemID: item.ItemID, Title: item.Title}
	}

	ranked := s.rank(anchor, neighbors, req.TopN)
	if len(ranked) == 0 {
		return nil, &Error{Kind: KindNoUnratedCandidates, Query: req.Title, ItemID: item.ItemID, Title: item.Title}
	}

	out := &Result{
		SnapshotID:   s.ID,
		Query:        req.Title,
		Matched:      item,
		AnchorUserID: s.Matrix.UserID(anchor),
		Neighbors:    make([]Neighbor, len(neighbors)),
		Items:        make([]Recommendation, len(ranked)),
	}
	for i, n := range neighbors {
		out.Neighbors[i] = Neighbor{
			UserID:     s.Matrix.UserID(n.row),
			Similarity: n.sim,
			Weight:     n.weight,
		}
	}
	for i, c := range ranked {
		id := s.Matrix.ItemID(c.col)
		rec, _ := s.Item(id)
		rec.ItemID = id
		out.Items[i] = Recommendation{ItemRecord: rec, PredictedScore: c.score}
	}
	return out, nil
}

// MatchTitle returns the first catalog item, in stored order, whose title
// contains query case-insensitively.
func (s *Snapshot) MatchTitle(query string) (ItemRecord, bool) {
	q := strings.ToLower(query)
	for i, t := range s.lowerTitles {
		if strings.Contains(t, q) {
			return s.Items[i], true
		}
	}
	return ItemRecord{}, false
}

// anchorFor picks the row with the highest rating in col. The lowest row
// wins a tie.
func (s *Snapshot) anchorFor(col int) (int, bool) {
	best, bestRating := -1, 0.0
	for i := 0; i < s.Matrix.Rows(); i++ {
		if r := s.Matrix.At(i, col); r != 0 && r > bestRating {
			best, bestRating = i, r
		}
	}
	return best, best >= 0
}

type neighbor struct {
	row    int
	sim    float64
	weight float64
}

// neighbors ranks every other row by similarity to anchor, takes the top
// min(k, rows-1) and drops those with similarity ≤ 0. Weights are the kept
// similarities scaled to sum to 1.
func (s *Snapshot) neighbors(anchor, k int) []neighbor {
	rows := s.Matrix.Rows()
	effectiveK := min(k, rows-1)
	if effectiveK <= 0 {
		return nil
	}

	sims := s.Similarity.Row(anchor)
	candidates := make([]neighbor, 0, rows-1)
	for i := 0; i < rows; i++ {
		if i == anchor {
			continue
		}
		candidates = append(candidates, neighbor{row: i, sim: sims[i]})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].sim > candidates[b].sim
	})
	candidates = candidates[:effectiveK]

	kept := candidates[:0]
	var total float64
	for _, c := range candidates {
		if c.sim > 0 {
			kept = append(kept, c)
			total += c.sim
		}
	}
	for i := range kept {
		kept[i].weight = kept[i].sim / total
	}
	return kept
}

type candidate struct {
	col   int
	score float64
}

// rank computes the weighted raw-rating score of every column, excludes the
// anchor's rated columns and returns at most topN columns by descending
// score. Equal scores keep ascending column order.
func (s *Snapshot) rank(anchor int, neighbors []neighbor, topN int) []candidate {
	cols := s.Matrix.Cols()
	scores := make([]float64, cols)
	for _, n := range neighbors {
		row := s.Matrix.Row(n.row)
		for j, r := range row {
			if r != 0 {
				scores[j] += n.weight * r
			}
		}
	}
	for j, r := range s.Matrix.Row(anchor) {
		if r != 0 {
			scores[j] = excludedScore
		}
	}

	out := make([]candidate, 0, cols)
	for j, sc := range scores {
		if sc >= 0 {
			out = append(out, candidate{col: j, score: sc})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].score > out[b].score
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
