// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session implements the Session Coordinator: create, join, leave,
state transitions, lookup by short code, and live observation of one
session node in the shared store.

# Decentralized by Design

Every participant's client runs this same Coordinator against the same
store paths. There is no server-side process enforcing invariants, no
cross-client lock, and no compare-and-swap. Two consequences are
deliberate and documented rather than fixed:

  - Join and leave are read-modify-write over the whole session object.
    Two simultaneous joiners can each read the same pre-join roster and
    overwrite each other; one join is silently lost (last write wins).
  - Short codes are checked against live sessions only at creation time,
    with no reservation step, so a collision window exists.

# Operations

  - Create: push key, fresh code, caller as host + sole participant,
    state waiting, one whole-object write.
  - Join: full scan by normalized code; idempotent for existing members;
    otherwise append + rewrite with bumped updatedAt.
  - Leave: remove + rewrite; the last participant out deletes the node.
    The host role never transfers - a hostless session cannot start
    voting.
  - UpdateState: partial write of {state, updatedAt} only; host-only by
    convention, trusted, no transition guard.
  - Observe: live subscription, nil delivery on deletion, idempotent
    unsubscribe.

# Errors

ErrNotAuthenticated (no identity yet), ErrNotFound (code or ID matches
no live session), ErrInvalidState (unknown state value). Store failures
wrap store.ErrUnavailable and are always surfaced, never fatal.
*/
package session
