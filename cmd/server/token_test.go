// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/bookshelf/internal/auth"
	"github.com/tomtom215/bookshelf/internal/config"
)

func TestIssueToken(t *testing.T) {
	sec := &config.SecurityConfig{
		JWTSecret:      strings.Repeat("s", 40),
		SessionTimeout: time.Hour,
	}

	var buf bytes.Buffer
	if err := issueToken(&buf, sec, " alice "); err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}

	m, err := auth.NewJWTManager(sec)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(strings.TrimSpace(buf.String()))
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "alice" || claims.Role != auth.RoleAdmin {
		t.Errorf("claims = %s/%s, want alice/admin", claims.Username, claims.Role)
	}
}

func TestIssueToken_Errors(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		username string
	}{
		{"no secret", "", "alice"},
		{"blank username", strings.Repeat("s", 40), "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := issueToken(&buf, &config.SecurityConfig{JWTSecret: tt.secret}, tt.username)
			if err == nil {
				t.Error("issueToken() error = nil, want error")
			}
			if buf.Len() != 0 {
				t.Errorf("output = %q, want empty", buf.String())
			}
		})
	}
}
