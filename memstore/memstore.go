// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jbake1990/biteswipe/store"
)

// Store is the in-process reference implementation of store.Store: a tree
// of JSON nodes guarded by one RWMutex, with watch fan-out through
// store.Hub. It exists so the engine runs and tests exercise the exact
// semantics the remote store provides (per-path last-write-wins, subtree
// materialization, no transactions).
type Store struct {
	mu   sync.RWMutex
	root *node
	hub  *store.Hub
	conn *store.BoolFeed
}

// A node may hold a leaf value, children, or both. When both exist the
// materialized view is the leaf object with children overlaid on top,
// which is how partial writes beneath a whole-object write behave.
type node struct {
	value    json.RawMessage
	children map[string]*node
}

// New returns an empty store reporting connected=true.
func New() *Store {
	return &Store{
		root: &node{},
		hub:  store.NewHub(),
		conn: store.NewBoolFeed(true),
	}
}

func (s *Store) Get(ctx context.Context, path string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	s.mu.RLock()
	snap := s.materialize(path)
	s.mu.RUnlock()

	if !snap.Exists {
		return false, nil
	}
	if dest != nil {
		if err := json.Unmarshal(snap.Value, dest); err != nil {
			return true, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, path string, value any) error {
	if value == nil {
		return s.Delete(ctx, path)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	s.mu.Lock()
	s.writeRaw(path, raw)
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", path, k, err)
		}
		encoded[k] = raw
	}

	s.mu.Lock()
	for k, raw := range encoded {
		s.writeRaw(path+"/"+k, raw)
	}
	s.mu.Unlock()

	s.notify(path)
	return nil
}

// writeRaw replaces the node at path with value, decomposed into tree
// nodes: one node per nested object field, down to scalar leaves. A
// whole-object session write therefore keeps its votes subtree
// addressable at sessions/{id}/votes, exactly as the remote store
// stores nested objects. Caller holds the write lock.
func (s *Store) writeRaw(path string, raw json.RawMessage) {
	n := s.ensure(path)
	n.value = nil
	n.children = nil
	for rel, leaf := range store.Decompose(raw) {
		if rel == "" {
			n.value = leaf
			continue
		}
		s.ensure(path + "/" + rel).value = leaf
	}
}

func (s *Store) Push(ctx context.Context, path string) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	segs := store.Split(path)
	if len(segs) == 0 {
		return fmt.Errorf("%w: refusing to delete root", store.ErrUnavailable)
	}

	s.mu.Lock()
	s.remove(s.root, segs)
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *Store) Watch(path string, fn func(store.Snapshot)) store.UnsubscribeFunc {
	s.mu.RLock()
	initial := s.materialize(path)
	s.mu.RUnlock()
	return s.hub.Watch(path, fn, initial)
}

func (s *Store) WatchConnected(fn func(bool)) store.UnsubscribeFunc {
	return s.conn.Subscribe(fn)
}

// SetConnected flips the connectivity signal. Test hook; the in-process
// store is otherwise always connected.
func (s *Store) SetConnected(v bool) {
	s.conn.Set(v)
}

func (s *Store) Close() error {
	s.hub.Close()
	return nil
}

func (s *Store) notify(changed string) {
	s.hub.Notify(changed, func(watched string) store.Snapshot {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.materialize(watched)
	})
}

// ensure walks to path, creating nodes as needed. Caller holds the write
// lock.
func (s *Store) ensure(path string) *node {
	n := s.root
	for _, seg := range store.Split(path) {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[seg]
		if !ok {
			child = &node{}
			n.children[seg] = child
		}
		n = child
	}
	return n
}

// remove deletes the node at segs beneath n, pruning ancestors left with
// neither value nor children. Caller holds the write lock.
func (s *Store) remove(n *node, segs []string) bool {
	child, ok := n.children[segs[0]]
	if !ok {
		return false
	}
	if len(segs) == 1 {
		delete(n.children, segs[0])
	} else if s.remove(child, segs[1:]) {
		delete(n.children, segs[0])
	}
	if len(n.children) == 0 {
		n.children = nil
	}
	return n.value == nil && len(n.children) == 0
}

// materialize builds the snapshot visible at path. Caller holds at least
// the read lock.
func (s *Store) materialize(path string) store.Snapshot {
	n := s.root
	for _, seg := range store.Split(path) {
		child, ok := n.children[seg]
		if !ok {
			return store.Snapshot{}
		}
		n = child
	}
	raw := flatten(n)
	if raw == nil {
		return store.Snapshot{}
	}
	return store.Snapshot{Exists: true, Value: raw}
}

// flatten renders a node as JSON: the leaf value with child subtrees
// overlaid as object fields. Children shadow same-named leaf fields, so
// a later partial write wins over an earlier whole-object write.
func flatten(n *node) json.RawMessage {
	if len(n.children) == 0 {
		return n.value
	}

	merged := make(map[string]json.RawMessage)
	if n.value != nil {
		// Non-object leaves are replaced outright by the child object.
		_ = json.Unmarshal(n.value, &merged)
	}
	for name, child := range n.children {
		if raw := flatten(child); raw != nil {
			merged[name] = raw
		}
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil
	}
	return raw
}
