// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbake1990/biteswipe/store"
)

// Store implements store.Store on database/sql for durable single-node
// deployments (SQLite or PostgreSQL, same SQL either way). Rows are flat
// (path, value) pairs; subtree reads use a prefix LIKE and assemble the
// nested value. Watch fan-out is in-process only: a second process on
// the same database sees writes but not push notifications.
type Store struct {
	db     *sql.DB
	hub    *store.Hub
	conn   *store.BoolFeed
	cancel context.CancelFunc
}

// CreateSchema creates the node table. Safe to call multiple times -
// uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Tree nodes, one row per leaf write. updated_at is unix milliseconds.
CREATE TABLE IF NOT EXISTS store_node (
    path TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at BIGINT NOT NULL
);
`

// Open wraps an already-connected database, creates the schema, and
// starts the connectivity ping loop.
func Open(db *sql.DB) (*Store, error) {
	if err := CreateSchema(db); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:     db,
		hub:    store.NewHub(),
		conn:   store.NewBoolFeed(true),
		cancel: cancel,
	}
	go s.pingLoop(ctx)
	return s, nil
}

func (s *Store) Get(ctx context.Context, path string, dest any) (bool, error) {
	raw, err := s.materialize(ctx, path)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", store.ErrUnavailable, err)
	}
	defer tx.Rollback()

	if err := writeNode(ctx, tx, path, raw); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", store.ErrUnavailable, err)
	}

	s.notify(path)
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", store.ErrUnavailable, err)
	}
	defer tx.Rollback()

	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", path, k, err)
		}
		if err := writeNode(ctx, tx, path+"/"+k, raw); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", store.ErrUnavailable, err)
	}

	s.notify(path)
	return nil
}

func (s *Store) Push(ctx context.Context, path string) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM store_node WHERE path = $1 OR path LIKE $2
	`, path, likePrefix(path))
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", store.ErrUnavailable, path, err)
	}

	s.notify(path)
	return nil
}

func (s *Store) Watch(path string, fn func(store.Snapshot)) store.UnsubscribeFunc {
	return s.hub.Watch(path, fn, s.snapshot(context.Background(), path))
}

func (s *Store) WatchConnected(fn func(bool)) store.UnsubscribeFunc {
	return s.conn.Subscribe(fn)
}

// Close stops subscriptions. The caller owns the *sql.DB and closes it.
func (s *Store) Close() error {
	s.cancel()
	s.hub.Close()
	return nil
}

// writeNode replaces the node at path: its old rows go away, the new
// value goes in decomposed into one row per nested leaf, so a
// whole-object session write keeps its votes subtree addressable at
// sessions/{id}/votes.
func writeNode(ctx context.Context, tx *sql.Tx, path string, raw json.RawMessage) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM store_node WHERE path = $1 OR path LIKE $2
	`, path, likePrefix(path))
	if err != nil {
		return fmt.Errorf("%w: clear %s: %v", store.ErrUnavailable, path, err)
	}
	now := time.Now().UnixMilli()
	for rel, leaf := range store.Decompose(raw) {
		rowPath := path
		if rel != "" {
			rowPath = path + "/" + rel
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO store_node (path, value, updated_at) VALUES ($1, $2, $3)
		`, rowPath, string(leaf), now)
		if err != nil {
			return fmt.Errorf("%w: write %s: %v", store.ErrUnavailable, rowPath, err)
		}
	}
	return nil
}

func (s *Store) materialize(ctx context.Context, path string) (json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, value FROM store_node WHERE path = $1 OR path LIKE $2
	`, path, likePrefix(path))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", store.ErrUnavailable, path, err)
	}
	defer rows.Close()

	flat := make(map[string]json.RawMessage)
	for rows.Next() {
		var rowPath, value string
		if err := rows.Scan(&rowPath, &value); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", store.ErrUnavailable, path, err)
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(rowPath, path), "/")
		flat[rel] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows %s: %v", store.ErrUnavailable, path, err)
	}

	if len(flat) == 0 {
		return nil, nil
	}
	return store.Assemble(flat), nil
}

func (s *Store) snapshot(ctx context.Context, path string) store.Snapshot {
	raw, err := s.materialize(ctx, path)
	if err != nil || raw == nil {
		return store.Snapshot{}
	}
	return store.Snapshot{Exists: true, Value: raw}
}

func (s *Store) notify(changed string) {
	s.hub.Notify(changed, func(watched string) store.Snapshot {
		return s.snapshot(context.Background(), watched)
	})
}

func (s *Store) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.conn.Set(s.db.PingContext(ctx) == nil)
		}
	}
}

func likePrefix(path string) string {
	return path + "/%"
}
