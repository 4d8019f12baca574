// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/bookshelf/internal/events"
)

var (
	_ suture.Service = (*NATSServerService)(nil)
	_ EmbeddedNATS   = (*events.EmbeddedServer)(nil)
)

type mockNATS struct {
	running     atomic.Bool
	shutdowns   atomic.Int32
	shutdownErr error
}

func newMockNATS() *mockNATS {
	m := &mockNATS{}
	m.running.Store(true)
	return m
}

func (m *mockNATS) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.running.Store(false)
	return m.shutdownErr
}

func (m *mockNATS) IsRunning() bool {
	return m.running.Load()
}

func TestNATSServerService_ShutdownOnCancel(t *testing.T) {
	server := newMockNATS()
	svc := NewNATSServerService(server)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if got := server.shutdowns.Load(); got != 1 {
		t.Errorf("Shutdown calls = %d, want 1", got)
	}
}

func TestNATSServerService_ShutdownError(t *testing.T) {
	server := newMockNATS()
	server.shutdownErr = errors.New("stuck")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewNATSServerService(server).Serve(ctx); !errors.Is(err, server.shutdownErr) {
		t.Errorf("Serve() error = %v, want %v", err, server.shutdownErr)
	}
}

func TestNATSServerService_DetectsStoppedServer(t *testing.T) {
	t.Run("not running at start", func(t *testing.T) {
		server := newMockNATS()
		server.running.Store(false)

		if err := NewNATSServerService(server).Serve(context.Background()); !errors.Is(err, errNATSStopped) {
			t.Errorf("Serve() error = %v, want errNATSStopped", err)
		}
	})

	t.Run("stops while serving", func(t *testing.T) {
		server := newMockNATS()
		svc := NewNATSServerService(server)
		svc.checkInterval = 10 * time.Millisecond

		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(context.Background()) }()

		time.Sleep(30 * time.Millisecond)
		server.running.Store(false)

		select {
		case err := <-errCh:
			if !errors.Is(err, errNATSStopped) {
				t.Errorf("Serve() error = %v, want errNATSStopped", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not notice the stopped server")
		}
	})
}

func TestNATSServerService_EmbeddedServer(t *testing.T) {
	ns, err := events.NewEmbeddedServer("127.0.0.1", -1)
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewNATSServerService(ns).Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-errCh

	if ns.IsRunning() {
		t.Error("embedded server still running after shutdown")
	}
}
