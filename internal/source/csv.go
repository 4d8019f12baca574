// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 4096

// CSVReader reads delimited files with encoding/csv.
type CSVReader struct {
	// Delimiter separates fields. Default ';'.
	Delimiter rune

	// Encoding is latin1 or utf8. Default latin1.
	Encoding string

	// RowCap limits data rows read. 0 = no cap.
	RowCap int
}

// NewCSVReader creates a reader with the given delimiter, encoding and row cap.
func NewCSVReader(delimiter rune, encoding string, rowCap int) *CSVReader {
	if delimiter == 0 {
		delimiter = ';'
	}
	if encoding == "" {
		encoding = "latin1"
	}
	return &CSVReader{Delimiter: delimiter, Encoding: encoding, RowCap: rowCap}
}

// ReadTable reads the file at path.
func (r *CSVReader) ReadTable(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	t, err := r.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// Read parses delimited text from src. Rows whose field count differs from
// the header, or that fail to parse, are counted in Table.Malformed.
func (r *CSVReader) Read(ctx context.Context, src io.Reader) (*Table, error) {
	if strings.EqualFold(r.Encoding, "latin1") {
		src = charmap.ISO8859_1.NewDecoder().Reader(src)
	}

	cr := csv.NewReader(src)
	cr.Comma = r.Delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("header: %w", err)
	}

	t := &Table{Header: header}
	read := 0
	for r.RowCap <= 0 || read < r.RowCap {
		if read%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		read++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				t.Malformed++
				continue
			}
			return nil, err
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
