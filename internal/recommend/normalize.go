// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

// Centered holds mean-centered user rows in sparse form alongside the
// per-user means. Only cells that were rated in the raw matrix appear in a
// row; unrated cells are implicit zeros.
type Centered struct {
	// Means holds one mean per row; 0 for a row with no ratings.
	Means []float64

	// Counts holds the number of rated cells per row.
	Counts []int

	// Rows holds each row's rated columns in ascending order.
	Rows []SparseRow
}

// SparseRow is a row stored as parallel column and value slices.
type SparseRow struct {
	Cols   []int
	Values []float64
}

// Normalize computes each row's mean over its nonzero cells and centers the
// nonzero cells around it. Zero cells stay zero since they denote "no
// observation", not an observed zero.
func Normalize(m *RatingMatrix) *Centered {
	n := m.Rows()
	c := &Centered{
		Means:  make([]float64, n),
		Counts: make([]int, n),
		Rows:   make([]SparseRow, n),
	}
	for i := 0; i < n; i++ {
		raw := m.Row(i)
		var sum float64
		var cols []int
		for j, v := range raw {
			if v != 0 {
				sum += v
				cols = append(cols, j)
			}
		}
		if len(cols) == 0 {
			continue
		}
		mean := sum / float64(len(cols))
		values := make([]float64, len(cols))
		for k, j := range cols {
			values[k] = raw[j] - mean
		}
		c.Means[i] = mean
		c.Counts[i] = len(cols)
		c.Rows[i] = SparseRow{Cols: cols, Values: values}
	}
	return c
}
