// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

// denseRow expands centered row i to a full-width slice.
func denseRow(c *Centered, i, cols int) []float64 {
	out := make([]float64, cols)
	r := c.Rows[i]
	for k, j := range r.Cols {
		out[j] = r.Values[k]
	}
	return out
}

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	mu        sync.Mutex
	data      *SourceData
	err       error
	loadCalls atomic.Int32

	// started and release, when set, make Load block until release closes.
	started chan struct{}
	release chan struct{}
}

func (m *mockDataProvider) Load(ctx context.Context) (*SourceData, error) {
	m.loadCalls.Add(1)
	if m.started != nil {
		close(m.started)
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *mockDataProvider) set(data *SourceData, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.err = err
}

// scenarioItems is the three-item catalog A, B, C.
func scenarioItems() []ItemRecord {
	return []ItemRecord{
		{ItemID: "A", Title: "A", Author: "Author A", Year: "2001", Publisher: "Pub"},
		{ItemID: "B", Title: "B", Author: "Author B", Year: "2002", Publisher: "Pub"},
		{ItemID: "C", Title: "C", Author: "Author C", Year: "2003", Publisher: "Pub"},
	}
}

// scenarioTriples rates U1:{A=8,B=6}; U2:{A=9,B=7,C=5}; U3:{B=4,C=9}.
func scenarioTriples() []RatingTriple {
	return []RatingTriple{
		{UserID: "U1", ItemID: "A", Rating: 8},
		{UserID: "U1", ItemID: "B", Rating: 6},
		{UserID: "U2", ItemID: "A", Rating: 9},
		{UserID: "U2", ItemID: "B", Rating: 7},
		{UserID: "U2", ItemID: "C", Rating: 5},
		{UserID: "U3", ItemID: "B", Rating: 4},
		{UserID: "U3", ItemID: "C", Rating: 9},
	}
}

// snapshotFromTriples builds a snapshot directly from triples, bypassing the
// join and its row floor.
func snapshotFromTriples(t *testing.T, items []ItemRecord, triples []RatingTriple) *Snapshot {
	t.Helper()
	m, err := BuildMatrix(triples)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}
	c := Normalize(m)
	sim, err := ComputeSimilarity(context.Background(), c, 2)
	if err != nil {
		t.Fatalf("ComputeSimilarity() error = %v", err)
	}
	s := &Snapshot{ID: "test-snapshot", Matrix: m, Means: c.Means, Similarity: sim}
	s.indexCatalog(items)
	return s
}

// generatedSource returns a deterministic dataset of users×items ratings
// with roughly two thirds of cells filled.
func generatedSource(users, items int) *SourceData {
	src := &SourceData{}
	for i := 1; i <= items; i++ {
		src.Items = append(src.Items, ItemRecord{
			ItemID: fmt.Sprintf("isbn-%03d", i),
			Title:  fmt.Sprintf("Generated Title %03d", i),
			Author: fmt.Sprintf("Author %d", i%5),
		})
	}
	for u := 1; u <= users; u++ {
		userID := fmt.Sprintf("user-%03d", u)
		src.Raters = append(src.Raters, RaterRecord{UserID: userID})
		for i := 1; i <= items; i++ {
			if (u+i)%3 == 0 {
				continue
			}
			src.Ratings = append(src.Ratings, RatingTriple{
				UserID: userID,
				ItemID: fmt.Sprintf("isbn-%03d", i),
				Rating: 1 + (u*7+i*3)%10,
			})
		}
	}
	return src
}
