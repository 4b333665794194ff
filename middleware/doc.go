// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by the handlers.

  - WithLogging: request start/completion logging via slog
  - JSONResponse / ErrorResponse: JSON writers
  - ParseJSONBody: request body decoding
  - ParticipantID: caller identity from the X-Participant-ID header
  - CORS: cross-origin support for the PWA frontend
*/
package middleware
