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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/recommend"
)

const (
	testBooks = "ISBN;Book-Title;Book-Author;Year-Of-Publication;Publisher\n" +
		"A;Alpha;Ann;2001;Pub\n" +
		"B;Beta;Bob;2002;Pub\n" +
		"C;Gamma;Cy;2003;Pub\n"
	testRatings = "User-ID;ISBN;Book-Rating\n" +
		"U1;A;8\nU1;B;6\nU2;B;4\nU2;C;10\nU3;C;6\nU3;A;0\n"
	testUsers = "User-ID;Location;Age\nU1;a;20\nU2;b;NULL\nU3;c;40\n"
)

func writeFixtures(t *testing.T) (books, ratings, users string) {
	t.Helper()
	dir := t.TempDir()
	books = filepath.Join(dir, "Books.csv")
	ratings = filepath.Join(dir, "Book-Ratings.csv")
	users = filepath.Join(dir, "Users.csv")
	for path, content := range map[string]string{books: testBooks, ratings: testRatings, users: testUsers} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return books, ratings, users
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	cfg := testSourcesConfig(t)
	cfg.ItemsPath, cfg.RatingsPath, cfg.RatersPath = writeFixtures(t)

	loader, err := NewLoader(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	defer loader.Close()

	data, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(data.Items) != 3 || len(data.Ratings) != 6 || len(data.Raters) != 3 {
		t.Errorf("Load() = %d items, %d ratings, %d raters, want 3, 6, 3",
			len(data.Items), len(data.Ratings), len(data.Raters))
	}
}

func TestLoader_FeedsEngine(t *testing.T) {
	t.Parallel()

	cfg := testSourcesConfig(t)
	cfg.ItemsPath, cfg.RatingsPath, cfg.RatersPath = writeFixtures(t)

	loader, err := NewLoader(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	engineCfg := recommend.DefaultConfig()
	engineCfg.MinUserRatings = 1
	engine, err := recommend.NewEngine(engineCfg, loader, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	// Five positive ratings are below the engine's join minimum.
	_, err = engine.Build(context.Background())
	if !errors.Is(err, recommend.ErrInsufficientSourceData) {
		t.Errorf("Build() error = %v, want InsufficientSourceData", err)
	}
}

func TestLoader_RemoteSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Books.csv":
			w.Write([]byte(testBooks)) //nolint:errcheck
		case "/Book-Ratings.csv":
			w.Write([]byte(testRatings)) //nolint:errcheck
		case "/Users.csv":
			w.Write([]byte(testUsers)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testSourcesConfig(t)
	cfg.ItemsPath = srv.URL + "/Books.csv"
	cfg.RatingsPath = srv.URL + "/Book-Ratings.csv"
	cfg.RatersPath = srv.URL + "/Users.csv"

	loader, err := NewLoader(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	data, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(data.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(data.Items))
	}

	leftovers, _ := filepath.Glob(filepath.Join(cfg.DownloadDir, "bookshelf-*"))
	if len(leftovers) != 0 {
		t.Errorf("downloaded files not removed: %v", leftovers)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	cfg := testSourcesConfig(t)
	cfg.ItemsPath, cfg.RatingsPath, cfg.RatersPath = writeFixtures(t)
	cfg.RatingsPath = filepath.Join(t.TempDir(), "missing.csv")

	loader, err := NewLoader(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := loader.Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestNewLoader_UnknownEngine(t *testing.T) {
	t.Parallel()

	cfg := testSourcesConfig(t)
	cfg.Engine = "parquet"
	if _, err := NewLoader(cfg, zerolog.Nop()); err == nil {
		t.Error("NewLoader() should reject an unknown engine")
	}
}
