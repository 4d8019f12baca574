// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package logging provides centralized zerolog-based logging for Bookshelf.

A single global zerolog.Logger is configured once at startup with Init and
read through package-level helpers. Components derive child loggers with
WithComponent and pass them by value.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("addr", addr).Msg("server starting")
	logging.Ctx(ctx).Warn().Err(err).Msg("query failed")

# Adapters

Two adapters route third-party logging into zerolog:

  - SlogHandler implements slog.Handler for sutureslog (supervisor tree events).
  - WatermillAdapter implements watermill.LoggerAdapter for the event bus.

# Context

Request and correlation IDs travel in context.Context. Ctx(ctx) returns a
logger with request_id and correlation_id fields already attached.
*/
package logging
