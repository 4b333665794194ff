// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package redistore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jbake1990/biteswipe/store"
)

const (
	keyPrefix     = "biteswipe:node:"
	changeChannel = "biteswipe:changes"
	scanBatch     = 200
)

// Store implements store.Store on Redis. Every tree node is a key
// (keyPrefix + path) holding its leaf JSON; subtree reads SCAN the path
// prefix and assemble the nested value. Writes publish the changed path
// on a pub/sub channel, so watchers in every connected process converge
// on the latest value. Connectivity follows the health of the pub/sub
// subscription.
type Store struct {
	client *redis.Client
	hub    *store.Hub
	conn   *store.BoolFeed
	cancel context.CancelFunc
}

// Open connects to the Redis at url (redis://...) and starts the change
// listener.
func Open(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		client: client,
		hub:    store.NewHub(),
		conn:   store.NewBoolFeed(false),
		cancel: cancel,
	}
	go s.listen(ctx)
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

	if err := s.writeValue(ctx, path, raw); err != nil {
		return err
	}
	return s.publish(ctx, path)
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", path, k, err)
		}
		if err := s.writeValue(ctx, path+"/"+k, raw); err != nil {
			return err
		}
	}
	return s.publish(ctx, path)
}

// writeValue replaces the node at path: the old leaf and subtree go
// away, the new value goes in decomposed into per-field keys. Nested
// objects stay addressable at their own paths, so a whole-object
// session write keeps its votes subtree readable.
func (s *Store) writeValue(ctx context.Context, path string, raw json.RawMessage) error {
	if err := s.client.Del(ctx, keyPrefix+path).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", store.ErrUnavailable, path, err)
	}
	if err := s.deleteSubtree(ctx, path); err != nil {
		return err
	}
	for rel, leaf := range store.Decompose(raw) {
		key := path
		if rel != "" {
			key = path + "/" + rel
		}
		if err := s.client.Set(ctx, keyPrefix+key, string(leaf), 0).Err(); err != nil {
			return fmt.Errorf("%w: set %s: %v", store.ErrUnavailable, key, err)
		}
	}
	return nil
}

func (s *Store) Push(ctx context.Context, path string) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.client.Del(ctx, keyPrefix+path).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", store.ErrUnavailable, path, err)
	}
	if err := s.deleteSubtree(ctx, path); err != nil {
		return err
	}
	return s.publish(ctx, path)
}

func (s *Store) Watch(path string, fn func(store.Snapshot)) store.UnsubscribeFunc {
	return s.hub.Watch(path, fn, s.snapshot(context.Background(), path))
}

func (s *Store) WatchConnected(fn func(bool)) store.UnsubscribeFunc {
	return s.conn.Subscribe(fn)
}

func (s *Store) Close() error {
	s.cancel()
	s.hub.Close()
	return s.client.Close()
}

// listen drives the pub/sub change feed, flipping the connectivity
// signal with the subscription's health and resubscribing after errors.
func (s *Store) listen(ctx context.Context) {
	for {
		pubsub := s.client.Subscribe(ctx, changeChannel)
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			s.conn.Set(false)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
				continue
			}
		}
		s.conn.Set(true)

		for msg := range pubsub.Channel() {
			changed := msg.Payload
			s.hub.Notify(changed, func(watched string) store.Snapshot {
				return s.snapshot(ctx, watched)
			})
		}
		pubsub.Close()
		s.conn.Set(false)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (s *Store) publish(ctx context.Context, path string) error {
	if err := s.client.Publish(ctx, changeChannel, path).Err(); err != nil {
		return fmt.Errorf("%w: publish %s: %v", store.ErrUnavailable, path, err)
	}
	return nil
}

func (s *Store) deleteSubtree(ctx context.Context, path string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+path+"/*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("%w: scan %s: %v", store.ErrUnavailable, path, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: del under %s: %v", store.ErrUnavailable, path, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// materialize reads the node's leaf plus every descendant leaf and
// assembles the nested value.
func (s *Store) materialize(ctx context.Context, path string) (json.RawMessage, error) {
	rows := make(map[string]json.RawMessage)

	leaf, err := s.client.Get(ctx, keyPrefix+path).Result()
	if err == nil {
		rows[""] = json.RawMessage(leaf)
	} else if err != redis.Nil {
		return nil, fmt.Errorf("%w: get %s: %v", store.ErrUnavailable, path, err)
	}

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+path+"/*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", store.ErrUnavailable, path, err)
		}
		if len(keys) > 0 {
			vals, err := s.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("%w: mget under %s: %v", store.ErrUnavailable, path, err)
			}
			for i, key := range keys {
				str, ok := vals[i].(string)
				if !ok {
					continue // deleted between SCAN and MGET
				}
				rel := strings.TrimPrefix(key, keyPrefix+path+"/")
				rows[rel] = json.RawMessage(str)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return store.Assemble(rows), nil
}

func (s *Store) snapshot(ctx context.Context, path string) store.Snapshot {
	raw, err := s.materialize(ctx, path)
	if err != nil {
		slog.Warn("redistore snapshot failed", "path", path, "error", err)
		return store.Snapshot{}
	}
	if raw == nil {
		return store.Snapshot{}
	}
	return store.Snapshot{Exists: true, Value: raw}
}
