// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the shared state store every client coordinates
through, plus the plumbing its backends have in common.

# The Store Interface

Store is a tree of JSON nodes addressed by slash-separated paths, with
the primitives the engine needs and nothing more:

  - Get / Set / Update / Delete: point reads and writes
  - Push: atomic generation of a new child key
  - Watch: live subscription to a path's materialized value
  - WatchConnected: live boolean connectivity signal

Guarantees are deliberately weak, matching the remote store the system
runs against: last-write-wins per path, eventual delivery of the latest
value to every subscriber, no cross-path atomicity, no compare-and-swap.
The session join/leave lost-update window documented in package session
is a direct consequence and is preserved, not papered over.

# Path Layout

	sessions/{sessionId}                                      -> Session
	sessions/{sessionId}/votes/{restaurantId}/{participantId} -> Vote

# Backends

Three interchangeable implementations live in sibling packages:

  - memstore: in-process reference implementation, used by all tests
  - redistore: Redis keys + pub/sub change notifications
  - sqlstore: durable single-node store over database/sql

# Subscriptions

Hub gives each watcher its own goroutine and a one-slot coalescing
mailbox: writers never block on slow callbacks, deliveries per watcher
stay ordered, and a burst of writes collapses into the latest snapshot.
Every unsubscribe func is idempotent; releasing one twice must never
panic or drop someone else's subscription.
*/
package store
