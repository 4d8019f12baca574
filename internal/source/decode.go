// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package source

import (
	"fmt"
	"strconv"

	"github.com/tomtom215/bookshelf/internal/recommend"
)

// requireColumns checks that every name is present in the header.
func requireColumns(stream Stream, c columns, names ...string) error {
	for _, n := range names {
		if !c.has(n) {
			return fmt.Errorf("%s: %w: %s", stream, ErrMissingColumn, n)
		}
	}
	return nil
}

// DecodeItems converts a books table into item records. Rows without an
// ISBN are skipped and counted.
func DecodeItems(t *Table) ([]recommend.ItemRecord, int, error) {
	c := newColumns(t.Header)
	if err := requireColumns(StreamItems, c, ColISBN, ColTitle); err != nil {
		return nil, 0, err
	}
	minWidth := c.width(ColISBN, ColTitle)

	items := make([]recommend.ItemRecord, 0, len(t.Rows))
	skipped := 0
	for _, rec := range t.Rows {
		id := c.get(rec, ColISBN)
		if len(rec) < minWidth || id == "" {
			skipped++
			continue
		}
		items = append(items, recommend.ItemRecord{
			ItemID:    id,
			Title:     c.get(rec, ColTitle),
			Author:    c.get(rec, ColAuthor),
			Year:      c.get(rec, ColYear),
			Publisher: c.get(rec, ColPublisher),
		})
	}
	return items, skipped, nil
}

// DecodeRatings converts a ratings table into rating triples. Rows with an
// empty id or a non-integer rating are skipped and counted.
func DecodeRatings(t *Table) ([]recommend.RatingTriple, int, error) {
	c := newColumns(t.Header)
	if err := requireColumns(StreamRatings, c, ColUserID, ColISBN, ColRating); err != nil {
		return nil, 0, err
	}
	minWidth := c.width(ColUserID, ColISBN, ColRating)

	ratings := make([]recommend.RatingTriple, 0, len(t.Rows))
	skipped := 0
	for _, rec := range t.Rows {
		if len(rec) < minWidth {
			skipped++
			continue
		}
		user, item := c.get(rec, ColUserID), c.get(rec, ColISBN)
		rating, err := strconv.Atoi(c.get(rec, ColRating))
		if user == "" || item == "" || err != nil {
			skipped++
			continue
		}
		ratings = append(ratings, recommend.RatingTriple{UserID: user, ItemID: item, Rating: rating})
	}
	return ratings, skipped, nil
}

// DecodeRaters converts a users table into rater records. An unparseable
// age is kept as 0 (unknown); only rows without a user id are skipped.
func DecodeRaters(t *Table) ([]recommend.RaterRecord, int, error) {
	c := newColumns(t.Header)
	if err := requireColumns(StreamRaters, c, ColUserID); err != nil {
		return nil, 0, err
	}

	raters := make([]recommend.RaterRecord, 0, len(t.Rows))
	skipped := 0
	for _, rec := range t.Rows {
		user := c.get(rec, ColUserID)
		if user == "" {
			skipped++
			continue
		}
		raters = append(raters, recommend.RaterRecord{
			UserID:   user,
			Location: c.get(rec, ColLocation),
			Age:      parseAge(c.get(rec, ColAge)),
		})
	}
	return raters, skipped, nil
}

func parseAge(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 200 {
		return 0
	}
	return int(f)
}
