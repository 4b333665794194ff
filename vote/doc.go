// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote records swipe decisions and detects group consensus.

Votes live at sessions/{id}/votes/{restaurantId}/{participantId}, one
per participant per restaurant, later writes overwriting earlier ones.
Participants only ever write under their own identity's path, so vote
submission is free of the read-modify-write hazards the session roster
has.

Consensus is unanimity over the current roster: a restaurant matches
when the number of distinct yes votes equals the live participant count
(and that count is nonzero). The policy is strict on purpose: a
participant who never votes on a restaurant blocks its consensus
forever, and the exact-equality comparison means stale votes from
departed participants also block it. Detector re-runs the evaluation on
every votes snapshot AND every session snapshot, since either feed can
be the one that makes unanimity true, and guarantees at-most-once
notification per restaurant per client by remembering what already
fired.
*/
package vote
