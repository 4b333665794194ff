// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the BiteSwipe coordination server.

BiteSwipe is a group restaurant-decision service: a host opens a session,
friends join with a six-character code, everyone swipes yes or no on
restaurant candidates, and the first restaurant that collects a yes from
every participant is the match.

# Starting the Server

The in-memory backend needs no configuration:

	go run main.go

Durable backends are selected with flags or environment variables:

	go run main.go -s sqlite -d biteswipe.db
	go run main.go -s postgres -d "postgres://..."
	go run main.go -s redis -r "redis://localhost:6379"

# Configuration

Optional settings:

  - PORT (-p): Server port (default: 8080)
  - STORE_BACKEND (-s): memory, redis, sqlite or postgres (default: memory)
  - DATABASE_URL (-d): Connection string / file path for the SQL backends
  - REDIS_URL (-r): Connection URL for the redis backend
  - DATA_DIR (--data-dir): Local state directory; relative sqlite file
    paths and embedded-client identities resolve against it (default: .)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - store: Path-addressable coordination store interface and watch hub
  - memstore, redistore, sqlstore: Store backends
  - session: Session lifecycle (create, join, leave, state)
  - vote: Vote recording and unanimity consensus detection
  - catalog: Restaurant candidates
  - client: Embeddable participant client with screen navigation
  - handlers: HTTP request handlers, including the WebSocket stream
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - identity, shortcode: Anonymous identities and join codes
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
