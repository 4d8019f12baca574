// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bookshelf/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// defaultCatalogLimit is the page size when the query gives none.
const defaultCatalogLimit = 20

// RecommendRequest is the body of POST /recommendations/ and the query of
// GET /recommendations/by-title. Zero K or TopN uses the server default.
type RecommendRequest struct {
	BookTitle string `json:"book_title" validate:"notblank,max=200"`
	TopN      int    `json:"top_n" validate:"min=0,max=50"`
	K         int    `json:"k" validate:"min=0,max=100"`
}

// CatalogRequest is the query of GET /catalog/books.
type CatalogRequest struct {
	Search string `json:"search" validate:"max=200"`
	Offset int    `json:"offset" validate:"min=0,max=1000000"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
}

// RebuildRequest is the optional body of POST /admin/rebuild.
type RebuildRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

// decodeJSONBody decodes a JSON body into dst. An empty body leaves dst
// unchanged when allowEmpty is set.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(dst)
	if err == io.EOF && allowEmpty {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// parseRecommendQuery reads a RecommendRequest from URL query parameters.
func parseRecommendQuery(r *http.Request) (RecommendRequest, error) {
	req := RecommendRequest{BookTitle: r.URL.Query().Get("book_title")}
	var err error
	if req.TopN, err = intQuery(r, "top_n", 0); err != nil {
		return req, err
	}
	if req.K, err = intQuery(r, "k", 0); err != nil {
		return req, err
	}
	return req, nil
}

// parseCatalogQuery reads a CatalogRequest from URL query parameters.
func parseCatalogQuery(r *http.Request) (CatalogRequest, error) {
	req := CatalogRequest{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	var err error
	if req.Offset, err = intQuery(r, "offset", 0); err != nil {
		return req, err
	}
	if req.Limit, err = intQuery(r, "limit", defaultCatalogLimit); err != nil {
		return req, err
	}
	return req, nil
}

// validateRequest validates v and writes a 400 VALIDATION_ERROR response
// on failure. It reports whether v was valid.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
	return false
}
