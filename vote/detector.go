// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"log/slog"
	"sync"

	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/session"
	"github.com/jbake1990/biteswipe/store"
)

// Consensus is one detected unanimity: every participant on the live
// roster voted yes on the restaurant.
type Consensus struct {
	SessionID    string
	RestaurantID string
	YesCount     int
}

// Detector runs the consensus evaluation for one session on one client.
// It feeds on two independent subscriptions - the votes subtree and the
// session node - and re-evaluates whenever either delivers, because a
// consensus can become true off a late-arriving roster update just as
// well as off a new vote.
//
// The trigger is unanimity over the CURRENT roster, always read from the
// latest session snapshot, never memoized: yesCount equals the live
// participant count and that count is nonzero. A participant who never
// votes blocks consensus forever.
//
// Each restaurant fires at most once per Detector. Snapshots keep
// arriving after a match (every vote and roster change re-runs the
// evaluation), so the fired set is what guarantees at-most-once
// notification.
type Detector struct {
	sessionID string
	onMatch   func(Consensus)

	mu     sync.Mutex
	roster []models.Participant
	live   bool
	votes  models.VoteMap
	fired  map[string]bool

	stopOnce   sync.Once
	unsubVotes store.UnsubscribeFunc
	unsubSess  store.UnsubscribeFunc
}

// NewDetector subscribes to the session's votes and roster and invokes
// onMatch exactly once per restaurant reaching consensus. Call Stop to
// release both subscriptions; Stop is idempotent.
func NewDetector(coord *session.Coordinator, agg *Aggregator, sessionID string, onMatch func(Consensus)) *Detector {
	d := &Detector{
		sessionID: sessionID,
		onMatch:   onMatch,
		fired:     make(map[string]bool),
	}
	d.unsubVotes = agg.ObserveVotes(sessionID, d.onVotes)
	d.unsubSess = coord.Observe(sessionID, d.onSession)
	return d
}

// Stop releases the detector's subscriptions.
func (d *Detector) Stop() {
	d.stopOnce.Do(func() {
		d.unsubVotes()
		d.unsubSess()
	})
}

// Live reports whether the detector has a current session snapshot to
// evaluate against. False before the first delivery and after observing
// the session's deletion.
func (d *Detector) Live() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *Detector) onVotes(votes models.VoteMap) {
	d.mu.Lock()
	d.votes = votes
	matches := d.evaluateLocked()
	d.mu.Unlock()
	d.emit(matches)
}

func (d *Detector) onSession(s *models.Session) {
	d.mu.Lock()
	if s == nil {
		// Session deleted: nothing to evaluate against anymore.
		d.roster = nil
		d.live = false
		d.mu.Unlock()
		return
	}
	d.roster = s.Participants
	d.live = true
	matches := d.evaluateLocked()
	d.mu.Unlock()
	d.emit(matches)
}

// evaluateLocked runs the unanimity check over every restaurant with
// recorded votes. Caller holds d.mu.
func (d *Detector) evaluateLocked() []Consensus {
	if !d.live || len(d.roster) == 0 {
		return nil
	}

	var matches []Consensus
	for restaurantID := range d.votes {
		if d.fired[restaurantID] {
			continue
		}
		yes := YesCount(d.votes, restaurantID)
		if yes == len(d.roster) {
			d.fired[restaurantID] = true
			matches = append(matches, Consensus{
				SessionID:    d.sessionID,
				RestaurantID: restaurantID,
				YesCount:     yes,
			})
		}
	}
	return matches
}

func (d *Detector) emit(matches []Consensus) {
	for _, m := range matches {
		slog.Info("consensus reached", "session_id", m.SessionID,
			"restaurant_id", m.RestaurantID, "yes_count", m.YesCount)
		d.onMatch(m)
	}
}
