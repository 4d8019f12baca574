// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/bookshelf/internal/logging"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInsufficientData   = "INSUFFICIENT_DATA"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
)

// statusForKind maps an engine failure kind to an HTTP status and code.
func statusForKind(kind recommend.Kind) (int, string) {
	switch kind {
	case recommend.KindDataNotLoaded:
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	case recommend.KindInsufficientSourceData:
		return http.StatusUnprocessableEntity, ErrCodeInsufficientData
	case recommend.KindNoMatchingTitle,
		recommend.KindItemNotInMatrix,
		recommend.KindNoUsersRatedItem,
		recommend.KindNoSimilarUsers,
		recommend.KindNoUnratedCandidates:
		return http.StatusNotFound, ErrCodeNotFound
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// errorDetails exposes the kind and the context fields of an engine error.
func errorDetails(err error) map[string]interface{} {
	var e *recommend.Error
	if !errors.As(err, &e) {
		return nil
	}
	details := map[string]interface{}{"kind": e.Kind.String()}
	if e.Query != "" {
		details["query"] = e.Query
	}
	if e.ItemID != "" {
		details["isbn"] = e.ItemID
	}
	if e.Title != "" {
		details["title"] = e.Title
	}
	if e.Kind == recommend.KindInsufficientSourceData {
		details["rows"] = e.Rows
		if e.Min > 0 {
			details["min_rows"] = e.Min
		} else {
			details["cols"] = e.Cols
		}
	}
	return details
}

// writeEngineError writes the response for an error returned by the engine
// or a rebuild. Unclassified errors are logged and reported generically.
func writeEngineError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrBuildInProgress):
		rw.Error(http.StatusConflict, ErrCodeConflict, "a snapshot build is already in progress")
		return
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out")
		return
	}

	kind := recommend.KindOf(err)
	status, code := statusForKind(kind)
	if kind == recommend.KindUnknown {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Unclassified engine error")
		rw.InternalError("internal server error")
		return
	}
	rw.ErrorWithDetails(status, code, err.Error(), errorDetails(err))
}
