// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity is the boundary to the anonymous identity provider: an
opaque, stable participant ID per client instance. No credentials, no
profile; the engine only ever compares the string. Ephemeral issues a
per-process ID, File pins one to disk for device-stable identity.
*/
package identity
