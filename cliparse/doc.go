// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse parses server configuration from CLI flags with
environment variable fallbacks.

Settings:

  - PORT (-p): server port (default: 8080)
  - STORE_BACKEND (-s): memory, redis, sqlite or postgres (default: memory)
  - DATABASE_URL (-d): connection string / file path for the SQL backends
  - REDIS_URL (-r): connection URL for the redis backend
  - DATA_DIR (--data-dir): local state directory; relative sqlite paths
    and persisted client identities resolve against it (default: .)

The memory backend needs nothing else and is the development default;
redis requires REDIS_URL, the SQL backends require DATABASE_URL.
*/
package cliparse
