// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

// RatingMatrix is a dense user×item rating matrix. A zero cell means
// "unrated"; the rating domain excludes zero.
type RatingMatrix struct {
	// rows share one backing array of len(users)*len(items)
	rows [][]float64

	userIDs   []string
	itemIDs   []string
	userIndex map[string]int
	itemIndex map[string]int
}

// BuildMatrix scatters triples into a RatingMatrix. Rows and columns are
// assigned in first-seen order of user and item identifiers. A repeated
// (user, item) pair keeps the last rating.
func BuildMatrix(triples []RatingTriple) (*RatingMatrix, error) {
	m := &RatingMatrix{
		userIndex: make(map[string]int),
		itemIndex: make(map[string]int),
	}
	for _, t := range triples {
		if _, ok := m.userIndex[t.UserID]; !ok {
			m.userIndex[t.UserID] = len(m.userIDs)
			m.userIDs = append(m.userIDs, t.UserID)
		}
		if _, ok := m.itemIndex[t.ItemID]; !ok {
			m.itemIndex[t.ItemID] = len(m.itemIDs)
			m.itemIDs = append(m.itemIDs, t.ItemID)
		}
	}

	nRows, nCols := len(m.userIDs), len(m.itemIDs)
	if nRows == 0 || nCols == 0 {
		return nil, &Error{Kind: KindInsufficientSourceData, Rows: nRows, Cols: nCols}
	}

	backing := make([]float64, nRows*nCols)
	m.rows = make([][]float64, nRows)
	for i := range m.rows {
		m.rows[i] = backing[i*nCols : (i+1)*nCols : (i+1)*nCols]
	}
	for _, t := range triples {
		m.rows[m.userIndex[t.UserID]][m.itemIndex[t.ItemID]] = float64(t.Rating)
	}
	return m, nil
}

// Rows returns the number of users.
func (m *RatingMatrix) Rows() int { return len(m.userIDs) }

// Cols returns the number of items.
func (m *RatingMatrix) Cols() int { return len(m.itemIDs) }

// At returns the rating in row i, column j.
func (m *RatingMatrix) At(i, j int) float64 { return m.rows[i][j] }

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *RatingMatrix) Row(i int) []float64 { return m.rows[i] }

// UserID returns the user identifier of row i.
func (m *RatingMatrix) UserID(i int) string { return m.userIDs[i] }

// ItemID returns the item identifier of column j.
func (m *RatingMatrix) ItemID(j int) string { return m.itemIDs[j] }

// UserRow returns the row index of a user.
func (m *RatingMatrix) UserRow(userID string) (int, bool) {
	i, ok := m.userIndex[userID]
	return i, ok
}

// ItemColumn returns the column index of an item.
func (m *RatingMatrix) ItemColumn(itemID string) (int, bool) {
	j, ok := m.itemIndex[itemID]
	return j, ok
}

// NonZero counts rated cells.
func (m *RatingMatrix) NonZero() int {
	n := 0
	for _, row := range m.rows {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Sparsity returns the fraction of unrated cells.
func (m *RatingMatrix) Sparsity() float64 {
	size := m.Rows() * m.Cols()
	if size == 0 {
		return 1
	}
	return 1 - float64(m.NonZero())/float64(size)
}
