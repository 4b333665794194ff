// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"encoding/json"
	"testing"
)

func TestAssembleLeafOnly(t *testing.T) {
	raw := Assemble(map[string]json.RawMessage{
		"": json.RawMessage(`{"state":"waiting"}`),
	})

	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got["state"] != "waiting" {
		t.Errorf("state = %q, want waiting", got["state"])
	}
}

func TestAssembleNestsDescendants(t *testing.T) {
	raw := Assemble(map[string]json.RawMessage{
		"votes/r1/p1": json.RawMessage(`{"vote":"yes"}`),
		"votes/r1/p2": json.RawMessage(`{"vote":"no"}`),
	})

	var got map[string]map[string]map[string]map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got["votes"]["r1"]["p1"]["vote"] != "yes" {
		t.Errorf("p1 vote = %q, want yes", got["votes"]["r1"]["p1"]["vote"])
	}
	if got["votes"]["r1"]["p2"]["vote"] != "no" {
		t.Errorf("p2 vote = %q, want no", got["votes"]["r1"]["p2"]["vote"])
	}
}

// A field written as its own child row shadows the same field inside the
// whole-object leaf, so partial updates win over earlier full writes.
func TestAssembleChildShadowsLeafField(t *testing.T) {
	raw := Assemble(map[string]json.RawMessage{
		"":      json.RawMessage(`{"state":"waiting","hostId":"h"}`),
		"state": json.RawMessage(`"voting"`),
	})

	var got map[string]json.RawMessage
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if string(got["state"]) != `"voting"` {
		t.Errorf("state = %s, want \"voting\"", got["state"])
	}
	if string(got["hostId"]) != `"h"` {
		t.Errorf("hostId = %s, untouched fields must survive", got["hostId"])
	}
}

func TestAssembleEmpty(t *testing.T) {
	if raw := Assemble(map[string]json.RawMessage{}); raw != nil {
		t.Errorf("Expected nil for no rows, got %s", raw)
	}
}

// Decompose splits nested objects into one row per leaf; Assemble puts
// them back. The two are inverses for the shapes sessions take.
func TestDecomposeObjectToLeafRows(t *testing.T) {
	rows := Decompose(json.RawMessage(`{
		"state": "voting",
		"participants": [{"id":"a"}],
		"votes": {"r1": {"p1": {"vote":"yes"}}}
	}`))

	if string(rows["state"]) != `"voting"` {
		t.Errorf("state row = %s, want \"voting\"", rows["state"])
	}
	// Arrays are leaves, not subtrees.
	if _, ok := rows["participants"]; !ok {
		t.Errorf("Expected participants as a single leaf row, got %v", rows)
	}
	if string(rows["votes/r1/p1/vote"]) != `"yes"` {
		t.Errorf("Nested vote row = %s, want \"yes\"", rows["votes/r1/p1/vote"])
	}
	if _, ok := rows[""]; ok {
		t.Error("Object input must not leave a whole-object leaf behind")
	}

	var got map[string]any
	if err := json.Unmarshal(Assemble(rows), &got); err != nil {
		t.Fatalf("Reassemble failed: %v", err)
	}
	if got["state"] != "voting" {
		t.Errorf("Round trip lost state: %v", got)
	}
}

func TestDecomposeScalarStaysLeaf(t *testing.T) {
	rows := Decompose(json.RawMessage(`"waiting"`))
	if len(rows) != 1 || string(rows[""]) != `"waiting"` {
		t.Errorf("Scalar must stay a single leaf, got %v", rows)
	}
}

func TestDecomposeEmptyObject(t *testing.T) {
	if rows := Decompose(json.RawMessage(`{}`)); len(rows) != 0 {
		t.Errorf("Empty object must produce no rows, got %v", rows)
	}
}

func TestRelated(t *testing.T) {
	tests := []struct {
		watched, changed string
		want             bool
	}{
		{"sessions/a", "sessions/a", true},
		{"sessions/a", "sessions/a/votes/r/p", true},
		{"sessions/a/votes", "sessions/a", true},
		{"sessions/a", "sessions/ab", false},
		{"sessions/a", "sessions/b/votes", false},
	}
	for _, tt := range tests {
		if got := Related(tt.watched, tt.changed); got != tt.want {
			t.Errorf("Related(%q, %q) = %v, want %v", tt.watched, tt.changed, got, tt.want)
		}
	}
}
