// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

// Package recommend implements a user-based collaborative filtering engine
// for book recommendations.
//
// # Pipeline
//
// A build runs once per data refresh and produces an immutable Snapshot:
//
//	JoinDataset → BuildMatrix → Normalize → ComputeSimilarity
//
//   - JoinDataset drops non-positive ratings, inner-joins ratings against the
//     item and rater tables, and applies the adaptive density filter.
//   - BuildMatrix scatters the joined triples into a dense user×item matrix
//     with first-seen row and column order.
//   - Normalize computes each user's mean over rated cells and centers the
//     rated cells around it.
//   - ComputeSimilarity fills the symmetric user×user cosine matrix over the
//     centered rows.
//
// # Queries
//
// Snapshot.Recommend resolves a free-text title, picks the anchor user (the
// highest rater of the matched book), weights the anchor's positively similar
// neighbors, and ranks the books the anchor has not rated yet.
//
// Recommendations are anchor-based, not personalized: the caller's own
// rating history plays no part in a query.
//
// # Concurrency
//
// Engine serializes builds and publishes each finished Snapshot with a single
// atomic pointer swap. Snapshots are never mutated after publication, so any
// number of queries may read one concurrently while a rebuild is running.
//
// # Errors
//
// Every modeled failure is an *Error with a Kind. Callers branch with
// errors.Is against the Err* sentinels or with KindOf.
package recommend
