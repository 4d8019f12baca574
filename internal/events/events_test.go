// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package events

import (
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

func TestNewRebuildRequested(t *testing.T) {
	t.Parallel()

	a := NewRebuildRequested("manual", "admin")
	b := NewRebuildRequested("manual", "admin")

	if a.RequestID == "" || a.RequestID == b.RequestID {
		t.Errorf("expected unique non-empty request ids, got %q and %q", a.RequestID, b.RequestID)
	}
	if a.RequestedAt.IsZero() {
		t.Error("RequestedAt should be set")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload validatable
		wantErr bool
	}{
		{"rebuild ok", RebuildRequested{RequestID: "r-1"}, false},
		{"rebuild missing id", RebuildRequested{Reason: "x"}, true},
		{"snapshot ok", SnapshotPublished{SnapshotID: "s-1"}, false},
		{"snapshot missing id", SnapshotPublished{Users: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Validate() error = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestNewMessageAndDecode(t *testing.T) {
	t.Parallel()

	builtAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := SnapshotPublished{SnapshotID: "s-42", Users: 120, Items: 900, NonZero: 3100, Sparsity: 0.97, BuiltAt: builtAt}

	msg, err := NewMessage(TypeSnapshotPublished, in)
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if msg.UUID == "" {
		t.Error("message UUID should be set")
	}
	if got := msg.Metadata.Get(MetadataEventType); got != TypeSnapshotPublished {
		t.Errorf("event_type = %q, want %q", got, TypeSnapshotPublished)
	}

	out, err := Decode[SnapshotPublished](msg)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.SnapshotID != "s-42" || out.Items != 900 || !out.BuiltAt.Equal(builtAt) {
		t.Errorf("Decode() = %+v, want %+v", out, in)
	}
}

func TestNewMessage_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NewMessage(TypeRebuildRequested, RebuildRequested{}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("NewMessage() error = %v, want ErrInvalidEvent", err)
	}
}

func TestDecode_BadPayload(t *testing.T) {
	t.Parallel()

	msg := message.NewMessage("m-1", []byte("{not json"))
	if _, err := Decode[RebuildRequested](msg); err == nil {
		t.Error("Decode() should fail on malformed JSON")
	}
}
