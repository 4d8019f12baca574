// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package source reads the books, ratings and users tables that feed a
snapshot build.

Each table is a delimited text file with a header row. Columns are located
by header name, case-insensitively, so extra columns are ignored:

	books:   ISBN;Book-Title;Book-Author;Year-Of-Publication;Publisher
	ratings: User-ID;ISBN;Book-Rating
	users:   User-ID;Location;Age

Two TableReader engines are available:

  - CSVReader: encoding/csv with an ISO-8859-1 decoder (x/text/charmap)
  - DuckDBReader: DuckDB read_csv with ignore_errors

Paths beginning with http:// or https:// are downloaded first by a Fetcher,
which wraps the HTTP client in a gobreaker circuit breaker.

Loader ties these together and implements recommend.DataProvider, loading
the three tables concurrently.
*/
package source
