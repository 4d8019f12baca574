// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/metrics"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

var _ SnapshotBuilder = (*recommend.Engine)(nil)

// mockBuilder returns the queued results in order, then repeats the last.
type mockBuilder struct {
	mu      sync.Mutex
	results []builderResult
	calls   int
	delay   time.Duration
}

type builderResult struct {
	snap *recommend.Snapshot
	err  error
}

func (m *mockBuilder) Build(ctx context.Context) (*recommend.Snapshot, error) {
	m.mu.Lock()
	i := m.calls
	m.calls++
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if len(m.results) == 0 {
		return testSnapshot("snap-default"), nil
	}
	if i >= len(m.results) {
		i = len(m.results) - 1
	}
	return m.results[i].snap, m.results[i].err
}

func (m *mockBuilder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testSnapshot(id string) *recommend.Snapshot {
	return &recommend.Snapshot{
		ID:      id,
		BuiltAt: time.Now(),
		Report: recommend.BuildReport{
			SnapshotID: id,
			Users:      4,
			Items:      3,
			NonZero:    9,
			Sparsity:   0.25,
		},
	}
}

func TestBuildRunner_Rebuild(t *testing.T) {
	insufficient := &recommend.Error{Kind: recommend.KindInsufficientSourceData, Rows: 1}

	tests := []struct {
		name        string
		result      builderResult
		wantErr     error
		wantOutcome string
	}{
		{"success", builderResult{snap: testSnapshot("s1")}, nil, "success"},
		{"build failure", builderResult{err: insufficient}, recommend.ErrInsufficientSourceData, "failure"},
		{"already building", builderResult{err: recommend.ErrBuildInProgress}, recommend.ErrBuildInProgress, "skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.SnapshotBuildsTotal.WithLabelValues(tt.wantOutcome)
			before := testutil.ToFloat64(counter)

			runner := NewBuildRunner(&mockBuilder{results: []builderResult{tt.result}}, zerolog.Nop())
			snap, err := runner.Rebuild(context.Background(), "test")

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Rebuild() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && snap == nil {
				t.Error("Rebuild() snapshot = nil, want snapshot")
			}
			if tt.wantErr != nil && snap != nil {
				t.Errorf("Rebuild() snapshot = %v, want nil on error", snap.ID)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("builds_total{%s} delta = %v, want 1", tt.wantOutcome, got)
			}
		})
	}
}

func TestBuildRunner_SuccessSetsShapeGauges(t *testing.T) {
	runner := NewBuildRunner(&mockBuilder{}, zerolog.Nop())
	if _, err := runner.Rebuild(context.Background(), "test"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(metrics.SnapshotUsers); got != 4 {
		t.Errorf("snapshot users gauge = %v, want 4", got)
	}
	if got := testutil.ToFloat64(metrics.SnapshotSparsity); got != 0.25 {
		t.Errorf("snapshot sparsity gauge = %v, want 0.25", got)
	}
}
