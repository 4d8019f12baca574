// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireRole(t *testing.T) {
	m := newTestManager(t)
	adminToken, _ := m.GenerateToken("alice", RoleAdmin)
	viewerToken, _ := m.GenerateToken("bob", "viewer")

	var gotUser string
	handler := NewMiddleware(m, nil).RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if ok {
			gotUser = claims.Username
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"admin token", "Bearer " + adminToken, http.StatusNoContent},
		{"lowercase scheme", "bearer " + adminToken, http.StatusNoContent},
		{"viewer token", "Bearer " + viewerToken, http.StatusForbidden},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic YWxpY2U6cHc=", http.StatusUnauthorized},
		{"bearer without token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/rebuild", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusNoContent && gotUser != "alice" {
				t.Errorf("claims username = %q, want alice", gotUser)
			}
		})
	}
}

func TestMiddleware_CustomErrorWriter(t *testing.T) {
	m := newTestManager(t)

	var gotCode string
	mw := NewMiddleware(m, func(w http.ResponseWriter, _ *http.Request, status int, code, _ string) {
		gotCode = code
		w.WriteHeader(status)
	})

	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized || gotCode != "UNAUTHORIZED" {
		t.Errorf("got status %d code %q, want 401 UNAUTHORIZED", rec.Code, gotCode)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Token abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v, want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
