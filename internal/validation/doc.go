// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

// Package validation validates API request structs with
// go-playground/validator v10.
//
// A single validator instance is created lazily and shared; it caches
// struct reflection data and is safe for concurrent use. Field names in
// errors are taken from json tags so messages match the wire format.
//
// In addition to the built-in tags, "notblank" rejects strings that are
// empty after trimming whitespace.
//
//	type RecommendRequest struct {
//	    BookTitle string `json:"book_title" validate:"notblank,max=200"`
//	    TopN      int    `json:"top_n" validate:"min=0,max=50"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // {"code":"VALIDATION_ERROR","message":"book_title is required", ...}
//	}
package validation
