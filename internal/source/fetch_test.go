// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/bookshelf/internal/config"
)

func testSourcesConfig(t *testing.T) *config.SourcesConfig {
	t.Helper()
	return &config.SourcesConfig{
		Engine:      "csv",
		Delimiter:   ";",
		Encoding:    "utf8",
		HTTPTimeout: 5 * time.Second,
		DownloadDir: t.TempDir(),
		Breaker: config.BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Hour,
			FailureThreshold: 2,
		},
	}
}

func TestIsRemote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"https://example.com/Books.csv", true},
		{"HTTP://example.com/Books.csv", true},
		{"data/Books.csv", false},
		{"/srv/http/Books.csv", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.path); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFetcher_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ISBN;Book-Title\n0001;Alpha\n")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher(testSourcesConfig(t), zerolog.Nop())
	path, err := f.Fetch(context.Background(), StreamItems, srv.URL+"/Books.csv")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ISBN;Book-Title\n0001;Alpha\n" {
		t.Errorf("downloaded content = %q", data)
	}
}

func TestFetcher_BreakerOpens(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(testSourcesConfig(t), zerolog.Nop())
	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(context.Background(), StreamRatings, srv.URL); err == nil {
			t.Fatalf("Fetch() #%d should fail on 502", i+1)
		}
	}

	if f.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", f.State())
	}

	_, err := f.Fetch(context.Background(), StreamRatings, srv.URL)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Fetch() with open breaker error = %v, want ErrOpenState", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestStateConversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state gobreaker.State
		f     float64
		s     string
	}{
		{gobreaker.StateClosed, 0, "closed"},
		{gobreaker.StateHalfOpen, 1, "half-open"},
		{gobreaker.StateOpen, 2, "open"},
		{gobreaker.State(99), -1, "unknown"},
	}
	for _, tt := range tests {
		if got := stateToFloat(tt.state); got != tt.f {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.f)
		}
		if got := stateToString(tt.state); got != tt.s {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.s)
		}
	}
}
