// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP endpoint handlers.

Handlers are thin: they translate HTTP to calls on the session
coordinator and vote aggregator, map sentinel errors to status codes,
and write JSON. Callers identify themselves with the X-Participant-ID
header obtained from POST /participants.

The stream handler is the exception: GET /sessions/{id}/stream upgrades
to a WebSocket and holds live store subscriptions (session snapshot,
vote snapshot, consensus matches) for the life of the connection.
*/
package handlers
