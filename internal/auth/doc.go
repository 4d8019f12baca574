// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

// Package auth issues and verifies HS256 JWTs and guards the admin API.
//
// Admin routes are mounted only when JWT_SECRET is configured. Tokens are
// minted offline with `server -issue-token <username>` and sent as
// "Authorization: Bearer <token>".
package auth
