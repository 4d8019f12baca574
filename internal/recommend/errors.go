// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from the engine.
	KindUnknown Kind = iota

	// KindDataNotLoaded means no snapshot has been published yet.
	KindDataNotLoaded

	// KindInsufficientSourceData means a build had too few usable rows.
	KindInsufficientSourceData

	// KindNoMatchingTitle means no catalog title contains the query.
	KindNoMatchingTitle

	// KindItemNotInMatrix means the matched item has no column in the matrix.
	KindItemNotInMatrix

	// KindNoUsersRatedItem means no row has a rating for the matched item.
	KindNoUsersRatedItem

	// KindNoSimilarUsers means the anchor has no positively similar neighbor.
	KindNoSimilarUsers

	// KindNoUnratedCandidates means every candidate was excluded.
	KindNoUnratedCandidates
)

// Sentinels for errors.Is. An *Error unwraps to the sentinel of its Kind.
var (
	ErrDataNotLoaded          = errors.New("recommendation data not loaded")
	ErrInsufficientSourceData = errors.New("insufficient source data")
	ErrNoMatchingTitle        = errors.New("no matching title")
	ErrItemNotInMatrix        = errors.New("item not in rating matrix")
	ErrNoUsersRatedItem       = errors.New("no users rated item")
	ErrNoSimilarUsers         = errors.New("no similar users")
	ErrNoUnratedCandidates    = errors.New("no unrated candidates")
)

// String returns the snake_case name used in logs, metrics and API details.
func (k Kind) String() string {
	switch k {
	case KindDataNotLoaded:
		return "data_not_loaded"
	case KindInsufficientSourceData:
		return "insufficient_source_data"
	case KindNoMatchingTitle:
		return "no_matching_title"
	case KindItemNotInMatrix:
		return "item_not_in_matrix"
	case KindNoUsersRatedItem:
		return "no_users_rated_item"
	case KindNoSimilarUsers:
		return "no_similar_users"
	case KindNoUnratedCandidates:
		return "no_unrated_candidates"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindDataNotLoaded:
		return ErrDataNotLoaded
	case KindInsufficientSourceData:
		return ErrInsufficientSourceData
	case KindNoMatchingTitle:
		return ErrNoMatchingTitle
	case KindItemNotInMatrix:
		return ErrItemNotInMatrix
	case KindNoUsersRatedItem:
		return ErrNoUsersRatedItem
	case KindNoSimilarUsers:
		return ErrNoSimilarUsers
	case KindNoUnratedCandidates:
		return ErrNoUnratedCandidates
	default:
		return nil
	}
}

// Error is a categorized engine failure. The context fields that apply to a
// given Kind are set; the others stay zero.
type Error struct {
	Kind Kind

	// Query is the title query of the failed request.
	Query string

	// ItemID and Title identify the matched catalog item.
	ItemID string
	Title  string

	// Rows and Cols are dataset or matrix dimensions for build failures.
	Rows int
	Cols int

	// Min is the row floor that was not met.
	Min int
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindDataNotLoaded:
		return "recommendation system not initialized, data not loaded yet"
	case KindInsufficientSourceData:
		if e.Min > 0 {
			return fmt.Sprintf("not enough data after merging: %d rows (minimum %d)", e.Rows, e.Min)
		}
		return fmt.Sprintf("rating matrix is empty: %d users x %d items", e.Rows, e.Cols)
	case KindNoMatchingTitle:
		return fmt.Sprintf("no books found matching title: %q", e.Query)
	case KindItemNotInMatrix:
		return fmt.Sprintf("book %q (isbn %s) found but not enough ratings for recommendations", e.Title, e.ItemID)
	case KindNoUsersRatedItem:
		return fmt.Sprintf("no users have rated %q", e.Title)
	case KindNoSimilarUsers:
		return fmt.Sprintf("no similar users found for %q", e.Title)
	case KindNoUnratedCandidates:
		return fmt.Sprintf("no new books to recommend for %q", e.Title)
	default:
		return "unknown recommendation failure"
	}
}

// Unwrap returns the sentinel for the error's Kind.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf returns the Kind of an engine error anywhere in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
