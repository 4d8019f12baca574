// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bookshelf/internal/recommend"
)

// BookResponse is a catalog record plus whether it can anchor a query.
type BookResponse struct {
	recommend.ItemRecord

	// Rated is false for books below the density filter; querying them
	// yields item_not_in_matrix.
	Rated bool `json:"rated"`
}

// ListBooks handles GET /api/v1/catalog/books.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseCatalogQuery(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	snap := h.engine.Snapshot()
	if snap == nil {
		writeEngineError(rw, &recommend.Error{Kind: recommend.KindDataNotLoaded})
		return
	}

	items, total := snap.SearchItems(req.Search, req.Offset, req.Limit)
	books := make([]BookResponse, len(items))
	for i, it := range items {
		books[i] = BookResponse{ItemRecord: it, Rated: snap.Rated(it.ItemID)}
	}

	rw.SuccessWithMeta(http.StatusOK, books, &APIMeta{
		SnapshotID: snap.ID,
		Pagination: &PaginationMeta{
			Total:   total,
			Count:   len(books),
			Offset:  req.Offset,
			Limit:   req.Limit,
			HasMore: req.Offset+len(books) < total,
		},
	})
}

// GetBook handles GET /api/v1/catalog/books/{isbn}.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.engine.Snapshot()
	if snap == nil {
		writeEngineError(rw, &recommend.Error{Kind: recommend.KindDataNotLoaded})
		return
	}

	isbn := chi.URLParam(r, "isbn")
	item, ok := snap.Item(isbn)
	if !ok {
		rw.ErrorWithDetails(http.StatusNotFound, ErrCodeNotFound, "book not found", map[string]interface{}{"isbn": isbn})
		return
	}

	rw.SuccessWithMeta(http.StatusOK, BookResponse{ItemRecord: item, Rated: snap.Rated(item.ItemID)}, &APIMeta{
		SnapshotID: snap.ID,
	})
}
