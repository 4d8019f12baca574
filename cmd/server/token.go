// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/bookshelf/internal/auth"
	"github.com/tomtom215/bookshelf/internal/config"
)

// issueToken writes an admin token for username to w.
func issueToken(w io.Writer, sec *config.SecurityConfig, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}

	m, err := auth.NewJWTManager(sec)
	if err != nil {
		return err
	}

	token, err := m.GenerateToken(username, auth.RoleAdmin)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, token)
	return err
}
