// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package recommend

import (
	"context"
	"time"
)

// ItemRecord is one catalog entry. ItemID is the unique key (the ISBN for
// book catalogs); the remaining fields are descriptive only.
type ItemRecord struct {
	ItemID    string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Year      string `json:"year,omitempty"`
	Publisher string `json:"publisher,omitempty"`
}

// RatingTriple is an explicit rating of an item by a user.
type RatingTriple struct {
	UserID string `json:"user_id"`
	ItemID string `json:"isbn"`
	Rating int    `json:"rating"`
}

// RaterRecord is a row of the rater reference table. Only UserID takes
// part in joins.
type RaterRecord struct {
	UserID   string `json:"user_id"`
	Location string `json:"location,omitempty"`
	Age      int    `json:"age,omitempty"` // 0 when unknown
}

// SourceData holds the three raw record streams a build consumes.
type SourceData struct {
	Items   []ItemRecord
	Ratings []RatingTriple
	Raters  []RaterRecord
}

// DataProvider supplies source records to the engine.
// It keeps this package independent of the ingestion layer.
type DataProvider interface {
	Load(ctx context.Context) (*SourceData, error)
}

// Request is a recommendation query.
type Request struct {
	// Title is matched case-insensitively as a substring of catalog titles.
	Title string

	// K is the maximum neighborhood size. Zero or negative uses the default.
	K int

	// TopN is the maximum number of results. Zero or negative uses the default.
	TopN int
}

// Recommendation is a ranked catalog item with its predicted score.
type Recommendation struct {
	ItemRecord
	PredictedScore float64 `json:"predicted_rating"`
}

// Neighbor is a user in the anchor's neighborhood.
type Neighbor struct {
	UserID     string  `json:"user_id"`
	Similarity float64 `json:"similarity"`
	Weight     float64 `json:"weight"`
}

// Result is the outcome of a successful query.
type Result struct {
	SnapshotID   string           `json:"snapshot_id"`
	Query        string           `json:"query"`
	Matched      ItemRecord       `json:"matched"`
	AnchorUserID string           `json:"anchor_user_id"`
	Neighbors    []Neighbor       `json:"neighbors"`
	Items        []Recommendation `json:"items"`
}

// Fallback names a stage of the density filter that was abandoned.
type Fallback string

const (
	// FallbackUser means no user met the minimum rating count.
	FallbackUser Fallback = "user"

	// FallbackItem means no item met the minimum rating count.
	FallbackItem Fallback = "item"

	// FallbackFloor means filtering left fewer rows than MinJoinedRows.
	FallbackFloor Fallback = "floor"
)

// JoinStats records row counts at each join and filter stage.
type JoinStats struct {
	SourceItems   int        `json:"source_items"`
	SourceRatings int        `json:"source_ratings"`
	SourceRaters  int        `json:"source_raters"`
	Positive      int        `json:"positive_ratings"`
	ItemJoined    int        `json:"item_joined"`
	RaterJoined   int        `json:"rater_joined"`
	Filtered      int        `json:"filtered"`
	Fallbacks     []Fallback `json:"fallbacks,omitempty"`
}

// BuildReport describes a finished build.
type BuildReport struct {
	SnapshotID string        `json:"snapshot_id"`
	BuiltAt    time.Time     `json:"built_at"`
	Duration   time.Duration `json:"duration_ns"`
	Join       JoinStats     `json:"join"`
	Users      int           `json:"users"`
	Items      int           `json:"items"`
	NonZero    int           `json:"non_zero"`
	Sparsity   float64       `json:"sparsity"`
	Catalog    int           `json:"catalog_size"`
}

// Status reports the engine's build state.
type Status struct {
	Loaded        bool         `json:"loaded"`
	Building      bool         `json:"building"`
	Builds        int64        `json:"builds"`
	FailedBuilds  int64        `json:"failed_builds"`
	Queries       int64        `json:"queries"`
	LastError     string       `json:"last_error,omitempty"`
	LastAttemptAt time.Time    `json:"last_attempt_at,omitempty"`
	Current       *BuildReport `json:"current,omitempty"`
}
