// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SimilarityMatrix is a square symmetric user×user matrix.
type SimilarityMatrix struct {
	n      int
	values []float64
}

// Size returns the side length.
func (s *SimilarityMatrix) Size() int { return s.n }

// At returns sim(i, j).
func (s *SimilarityMatrix) At(i, j int) float64 { return s.values[i*s.n+j] }

// Row returns the similarities of row i. The slice aliases the matrix.
func (s *SimilarityMatrix) Row(i int) []float64 { return s.values[i*s.n : (i+1)*s.n] }

// ComputeSimilarity computes cosine similarity between every pair of
// centered rows: dot(ci, cj) / (‖ci‖·‖cj‖), or 0 when either norm is 0.
// The diagonal is 1 for every row with at least one rating. With fewer than
// two rows the result is the 1×1 matrix [1].
//
// Rows are distributed across workers goroutines (0 = GOMAXPROCS). Each
// pair (i, j), i < j, is computed once by the worker owning row i, so the
// result does not depend on scheduling.
func ComputeSimilarity(ctx context.Context, c *Centered, workers int) (*SimilarityMatrix, error) {
	n := len(c.Rows)
	if n < 2 {
		return &SimilarityMatrix{n: 1, values: []float64{1}}, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	norms := make([]float64, n)
	for i, r := range c.Rows {
		var sq float64
		for _, v := range r.Values {
			sq += v * v
		}
		norms[i] = math.Sqrt(sq)
	}

	s := &SimilarityMatrix{n: n, values: make([]float64, n*n)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if c.Counts[i] > 0 {
				s.values[i*n+i] = 1
			}
			if norms[i] == 0 {
				return nil
			}
			for j := i + 1; j < n; j++ {
				if norms[j] == 0 {
					continue
				}
				sim := sparseDot(c.Rows[i], c.Rows[j]) / (norms[i] * norms[j])
				s.values[i*n+j] = sim
				s.values[j*n+i] = sim
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// sparseDot merges two rows with ascending column indices.
func sparseDot(a, b SparseRow) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Cols) && j < len(b.Cols) {
		switch {
		case a.Cols[i] == b.Cols[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Cols[i] < b.Cols[j]:
			i++
		default:
			j++
		}
	}
	return dot
}
