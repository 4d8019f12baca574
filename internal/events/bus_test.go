// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/config"
)

func testEventsConfig(backend string) *config.EventsConfig {
	return &config.EventsConfig{
		Enabled:       true,
		Backend:       backend,
		RebuildTopic:  "catalog.rebuild",
		SnapshotTopic: "catalog.snapshot",
	}
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestBus_GoChannelRoundTrip(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(testEventsConfig("gochannel"), "", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, bus.RebuildTopic())
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	req := NewRebuildRequested("manual", "admin")
	if err := bus.PublishRebuild(ctx, req); err != nil {
		t.Fatalf("PublishRebuild() error = %v", err)
	}

	msg := receive(t, ch)
	defer msg.Ack()

	got, err := Decode[RebuildRequested](msg)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.RequestID != req.RequestID || got.RequestedBy != "admin" {
		t.Errorf("received %+v, want %+v", got, req)
	}
	if bus.Seen(msg) {
		t.Error("first Seen() = true, want false")
	}
	if !bus.Seen(msg) {
		t.Error("second Seen() = false, want true")
	}
}

func TestBus_TopicsAreSeparate(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(testEventsConfig(""), "", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, err := bus.Subscribe(ctx, bus.SnapshotTopic())
	if err != nil {
		t.Fatal(err)
	}

	if err := bus.PublishRebuild(ctx, NewRebuildRequested("ignored", "")); err != nil {
		t.Fatal(err)
	}
	if err := bus.PublishSnapshot(ctx, SnapshotPublished{SnapshotID: "s-1", Users: 3}); err != nil {
		t.Fatal(err)
	}

	msg := receive(t, snapshots)
	msg.Ack()
	if got := msg.Metadata.Get(MetadataEventType); got != TypeSnapshotPublished {
		t.Errorf("event_type = %q, want %q", got, TypeSnapshotPublished)
	}
}

func TestBus_Closed(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(testEventsConfig("gochannel"), "", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	err = bus.PublishSnapshot(context.Background(), SnapshotPublished{SnapshotID: "s-1"})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("PublishSnapshot() after Close error = %v, want ErrBusClosed", err)
	}
	if _, err := bus.Subscribe(context.Background(), "x"); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Subscribe() after Close error = %v, want ErrBusClosed", err)
	}
}

func TestNewBus_UnknownBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewBus(testEventsConfig("kafka"), "", zerolog.Nop()); err == nil {
		t.Error("NewBus() should reject an unknown backend")
	}
}

func TestBus_NATSWithEmbeddedServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	srv, err := NewEmbeddedServer("127.0.0.1", -1)
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}
	defer srv.Shutdown(context.Background()) //nolint:errcheck

	if !srv.IsRunning() {
		t.Fatal("embedded server should be running")
	}

	bus, err := NewBus(testEventsConfig("nats"), srv.ClientURL(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, bus.SnapshotTopic())
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// Core NATS drops messages published before the subscription is
	// registered with the server, so retry until one arrives.
	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if err := bus.PublishSnapshot(ctx, SnapshotPublished{SnapshotID: "s-nats"}); err != nil {
			t.Fatalf("PublishSnapshot() error = %v", err)
		}
		select {
		case msg := <-ch:
			msg.Ack()
			got, err := Decode[SnapshotPublished](msg)
			if err != nil || got.SnapshotID != "s-nats" {
				t.Errorf("received %+v, err %v", got, err)
			}
			return
		case <-ticker.C:
		case <-deadline:
			t.Fatal("timed out waiting for NATS message")
		}
	}
}
