// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/session"
	"github.com/jbake1990/biteswipe/store"
)

// ErrInvalidVote means the vote value is not "yes" or "no".
var ErrInvalidVote = errors.New("invalid vote value")

// Aggregator records per-restaurant decisions and exposes the live vote
// state of a session. Each participant writes only under their own
// identity's path, so concurrent submissions from different participants
// never conflict.
type Aggregator struct {
	store store.Store
}

// NewAggregator returns an Aggregator over the given store.
func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Submit writes the participant's vote on one restaurant. A later vote
// for the same (restaurant, participant) overwrites the earlier one at
// the same path; re-voting is idempotent.
func (a *Aggregator) Submit(ctx context.Context, sessionID, restaurantID, participantID, value string) error {
	if participantID == "" {
		return session.ErrNotAuthenticated
	}
	if value != models.VoteYes && value != models.VoteNo {
		return fmt.Errorf("%w: %q", ErrInvalidVote, value)
	}

	v := models.Vote{
		ParticipantID: participantID,
		RestaurantID:  restaurantID,
		Vote:          value,
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := a.store.Set(ctx, store.VotePath(sessionID, restaurantID, participantID), v); err != nil {
		return err
	}

	slog.Info("vote submitted", "session_id", sessionID, "restaurant_id", restaurantID,
		"participant_id", participantID, "vote", value)
	return nil
}

// Votes reads the full current vote mapping for a session.
func (a *Aggregator) Votes(ctx context.Context, sessionID string) (models.VoteMap, error) {
	var votes models.VoteMap
	ok, err := a.store.Get(ctx, store.VotesPath(sessionID), &votes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return models.VoteMap{}, nil
	}
	return votes, nil
}

// ObserveVotes subscribes fn to the session's votes subtree. On every
// change fn receives the complete current mapping
// restaurantID -> participantID -> Vote (empty, never nil, when no votes
// exist yet).
func (a *Aggregator) ObserveVotes(sessionID string, fn func(models.VoteMap)) store.UnsubscribeFunc {
	return a.store.Watch(store.VotesPath(sessionID), func(snap store.Snapshot) {
		if !snap.Exists {
			fn(models.VoteMap{})
			return
		}
		var votes models.VoteMap
		if err := snap.Decode(&votes); err != nil {
			slog.Error("failed to decode votes snapshot", "session_id", sessionID, "error", err)
			return
		}
		fn(votes)
	})
}

// YesCount returns how many distinct participants voted yes on the
// restaurant. Only explicit yes counts; "voted no" and "never voted" are
// indistinguishable to consensus, both block it.
func YesCount(votes models.VoteMap, restaurantID string) int {
	n := 0
	for _, v := range votes[restaurantID] {
		if v.Vote == models.VoteYes {
			n++
		}
	}
	return n
}
