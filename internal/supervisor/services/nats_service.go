// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// errNATSStopped is returned when the embedded server stops on its own.
var errNATSStopped = errors.New("embedded NATS server is not running")

// EmbeddedNATS is the lifecycle of an in-process NATS server that was
// started before the supervisor tree. Satisfied by *events.EmbeddedServer.
type EmbeddedNATS interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// NATSServerService supervises an embedded NATS server. The server is
// started by its constructor, because the event bus must connect before the
// tree runs; this service watches its health and shuts it down last.
type NATSServerService struct {
	server          EmbeddedNATS
	checkInterval   time.Duration
	shutdownTimeout time.Duration
	name            string
}

// NewNATSServerService creates the service with a 5s health check and a
// 10s shutdown timeout.
func NewNATSServerService(server EmbeddedNATS) *NATSServerService {
	return &NATSServerService{
		server:          server,
		checkInterval:   5 * time.Second,
		shutdownTimeout: 10 * time.Second,
		name:            "nats-server",
	}
}

// Serve implements suture.Service. It returns an error if the server stops
// while the tree is running so the failure shows in supervisor logs.
func (s *NATSServerService) Serve(ctx context.Context) error {
	if !s.server.IsRunning() {
		return errNATSStopped
	}

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.server.IsRunning() {
				return errNATSStopped
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()

			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("NATS server shutdown failed: %w", err)
			}
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *NATSServerService) String() string {
	return s.name
}
