// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

// DuckDBReader reads delimited files through DuckDB's read_csv, which skips
// rows it cannot parse when ignore_errors is set.
type DuckDBReader struct {
	db        *sql.DB
	delimiter rune
	encoding  string
	rowCap    int
}

// NewDuckDBReader opens an in-memory DuckDB database for reading.
func NewDuckDBReader(delimiter rune, encoding string, rowCap int) (*DuckDBReader, error) {
	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}
	if delimiter == 0 {
		delimiter = ';'
	}
	return &DuckDBReader{db: db, delimiter: delimiter, encoding: encoding, rowCap: rowCap}, nil
}

// Close releases the database.
func (r *DuckDBReader) Close() error {
	return r.db.Close()
}

// ReadTable reads the file at path. All columns are read as text so the
// shared decoders apply the same row rules as the CSV engine.
func (r *DuckDBReader) ReadTable(ctx context.Context, path string) (*Table, error) {
	rows, err := r.db.QueryContext(ctx, r.query(path))
	if err != nil {
		return nil, fmt.Errorf("read_csv %s: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", path, err)
	}

	t := &Table{Header: header}
	values := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = v.String
		}
		t.Rows = append(t.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", path, err)
	}
	return t, nil
}

func (r *DuckDBReader) query(path string) string {
	encoding := "utf-8"
	if strings.EqualFold(r.encoding, "latin1") {
		encoding = "latin-1"
	}

	q := fmt.Sprintf(
		"SELECT * FROM read_csv(%s, delim = %s, header = true, all_varchar = true, ignore_errors = true, encoding = %s)",
		quoteLiteral(path), quoteLiteral(string(r.delimiter)), quoteLiteral(encoding),
	)
	if r.rowCap > 0 {
		q += fmt.Sprintf(" LIMIT %d", r.rowCap)
	}
	return q
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
