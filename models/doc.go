// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the engine
and its HTTP facade.

# Domain Types

  - Session: shared coordination unit (roster, state, short code)
  - Participant: one roster member, keyed by opaque identity
  - Vote: one participant's yes/no on one restaurant
  - VoteMap: restaurantID -> participantID -> Vote
  - Restaurant: read-only candidate record from the catalog
  - Match: the consensus event

# Constants

Session states (forward-only: waiting -> voting -> completed):

	StateWaiting   = "waiting"
	StateVoting    = "voting"
	StateCompleted = "completed"

Vote values:

	VoteYes = "yes"
	VoteNo  = "no"

# JSON Shape

Domain types marshal with the camelCase field names the shared store holds
(joinedAt, shortCode, hostId, ...), so a Session round-trips through the
store unchanged. Request/response types use snake_case like the rest of
the HTTP surface.
*/
package models
