// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package shortcode generates and validates the 6-character [A-Z0-9] codes
participants share to join a session. Codes are distinct from a session's
internal store key and are only guaranteed unique among sessions live at
creation time; nothing reserves a code ahead of the session write.
*/
package shortcode
