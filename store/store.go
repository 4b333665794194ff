// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrUnavailable wraps any backend read/write failure. Callers treat
	// it as transient: surface a notice, never crash, let the user retry.
	ErrUnavailable = errors.New("store unavailable")
)

// Snapshot is the value of a path at one delivery. Exists is false when
// the node has been deleted; Value is the materialized JSON of the node
// and everything beneath it.
type Snapshot struct {
	Exists bool
	Value  json.RawMessage
}

// Decode unmarshals the snapshot value into dest.
func (s Snapshot) Decode(dest any) error {
	if !s.Exists {
		return errors.New("snapshot does not exist")
	}
	return json.Unmarshal(s.Value, dest)
}

// UnsubscribeFunc releases a live subscription. Safe to call more than
// once; only the first call has any effect.
type UnsubscribeFunc func()

// Store is a tree-structured, path-addressable shared state store with
// per-path last-write-wins semantics and live value subscriptions. It is
// the interface boundary to the remote store every client coordinates
// through; there are no cross-path transactions and no compare-and-swap,
// so read-modify-write sequences over it are vulnerable to lost updates.
type Store interface {
	// Get reads the materialized value at path into dest. The returned
	// bool is false when the path does not exist.
	Get(ctx context.Context, path string, dest any) (bool, error)

	// Set writes value at path, replacing whatever was there, including
	// any children. Last writer wins.
	Set(ctx context.Context, path string, value any) error

	// Update writes only the given child fields of path, leaving the
	// node's other fields untouched.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Push generates a new unique child key under path without writing
	// anything. The caller writes to path/key afterwards.
	Push(ctx context.Context, path string) (string, error)

	// Delete removes the node at path and its entire subtree.
	Delete(ctx context.Context, path string) error

	// Watch subscribes fn to the live value at path. fn is invoked once
	// with the current snapshot, then again after every change at or
	// beneath path. Deliveries for one subscription are in order;
	// intermediate values may be coalesced into the latest.
	Watch(path string, fn func(Snapshot)) UnsubscribeFunc

	// WatchConnected subscribes fn to the boolean connectivity signal.
	// fn is invoked with the current value, then on every change.
	WatchConnected(fn func(bool)) UnsubscribeFunc

	// Close releases the backend and stops all subscriptions.
	Close() error
}

// Path layout shared by every backend:
//
//	sessions/{sessionId}                                      -> Session
//	sessions/{sessionId}/votes/{restaurantId}/{participantId} -> Vote

// SessionsRoot is the parent path of all live sessions. Short-code lookup
// is a full scan of this node; there is no secondary index.
const SessionsRoot = "sessions"

// SessionPath returns the path of one session node.
func SessionPath(sessionID string) string {
	return SessionsRoot + "/" + sessionID
}

// VotesPath returns the path of a session's whole votes subtree.
func VotesPath(sessionID string) string {
	return SessionPath(sessionID) + "/votes"
}

// VotePath returns the path of one participant's vote on one restaurant.
func VotePath(sessionID, restaurantID, participantID string) string {
	return VotesPath(sessionID) + "/" + restaurantID + "/" + participantID
}

// Split breaks a path into its segments, ignoring empty ones.
func Split(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Related reports whether a change at changed is visible to a watcher of
// watched: either path is an ancestor of (or equal to) the other.
func Related(watched, changed string) bool {
	if watched == changed {
		return true
	}
	return strings.HasPrefix(changed, watched+"/") || strings.HasPrefix(watched, changed+"/")
}
