// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package source

import (
	"context"
	"errors"
	"strings"
)

// Stream names one of the three source tables.
type Stream string

const (
	StreamItems   Stream = "items"
	StreamRatings Stream = "ratings"
	StreamRaters  Stream = "raters"
)

// Column headers of the source tables.
const (
	ColISBN      = "ISBN"
	ColTitle     = "Book-Title"
	ColAuthor    = "Book-Author"
	ColYear      = "Year-Of-Publication"
	ColPublisher = "Publisher"
	ColUserID    = "User-ID"
	ColRating    = "Book-Rating"
	ColLocation  = "Location"
	ColAge       = "Age"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("required column missing")

// Table is the raw content of one delimited file.
type Table struct {
	Header []string
	Rows   [][]string

	// Malformed counts rows the reader rejected before decoding.
	Malformed int
}

// TableReader reads a delimited file into a Table.
type TableReader interface {
	ReadTable(ctx context.Context, path string) (*Table, error)
}

// columns maps lowercased header names to field positions.
type columns map[string]int

func newColumns(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := c[name]; !dup {
			c[name] = i
		}
	}
	return c
}

func (c columns) has(name string) bool {
	_, ok := c[strings.ToLower(name)]
	return ok
}

// get returns the trimmed field for name, or "" when the column or field is absent.
func (c columns) get(rec []string, name string) string {
	i, ok := c[strings.ToLower(name)]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// width is the number of fields a row needs to cover every known column.
func (c columns) width(names ...string) int {
	w := 0
	for _, n := range names {
		if i, ok := c[strings.ToLower(n)]; ok && i+1 > w {
			w = i + 1
		}
	}
	return w
}
