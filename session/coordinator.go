// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/shortcode"
	"github.com/jbake1990/biteswipe/store"
)

var (
	// ErrNotAuthenticated means no participant identity is established.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound means no live session matches the given code or ID.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidState means the state value is not one of waiting,
	// voting, completed.
	ErrInvalidState = errors.New("invalid session state")
)

// codeAttempts bounds short-code regeneration when a generated code
// collides with a live session. The check is best-effort only: nothing
// reserves a code, so two near-simultaneous creations can still mint the
// same one.
const codeAttempts = 5

// Coordinator owns session lifecycle against the shared store. Every
// participant's client runs the same Coordinator logic; there is no
// server-side arbiter, so join and leave are raw read-modify-write
// sequences with a lost-update window under true concurrency.
type Coordinator struct {
	store store.Store
}

// NewCoordinator returns a Coordinator over the given store.
func NewCoordinator(st store.Store) *Coordinator {
	return &Coordinator{store: st}
}

// Create makes a new session with the caller as host and sole
// participant, state waiting, and writes it as one whole-object set
// under a freshly pushed key.
func (c *Coordinator) Create(ctx context.Context, participantID string) (*models.Session, error) {
	if participantID == "" {
		return nil, ErrNotAuthenticated
	}

	sessionID, err := c.store.Push(ctx, store.SessionsRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: push session key: %v", store.ErrUnavailable, err)
	}

	code, err := c.freshCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	session := &models.Session{
		ID:        sessionID,
		ShortCode: code,
		HostID:    participantID,
		Participants: []models.Participant{{
			ID:       participantID,
			Name:     "Host",
			JoinedAt: now,
			IsReady:  false,
		}},
		State:     models.StateWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.store.Set(ctx, store.SessionPath(sessionID), session); err != nil {
		return nil, err
	}

	slog.Info("session created", "session_id", sessionID, "short_code", code, "host_id", participantID)
	return session, nil
}

// Join adds the caller to the session matching code. The lookup is a
// full scan of live sessions (no secondary index) with case-insensitive
// comparison. Joining a session the caller already belongs to returns it
// unchanged. Otherwise the roster is appended and the whole session
// object rewritten; two simultaneous joiners can each read the same
// pre-join roster and overwrite each other, losing one join (last write
// wins). The store offers no compare-and-swap, so the window stays.
func (c *Coordinator) Join(ctx context.Context, code, participantID string) (*models.Session, error) {
	if participantID == "" {
		return nil, ErrNotAuthenticated
	}

	code = shortcode.Normalize(code)
	if !shortcode.IsValid(code) {
		return nil, ErrNotFound
	}

	session, err := c.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if session.HasParticipant(participantID) {
		slog.Info("join was no-op, already a participant", "session_id", session.ID, "participant_id", participantID)
		return session, nil
	}

	now := time.Now().UnixMilli()
	session.Participants = append(session.Participants, models.Participant{
		ID:       participantID,
		Name:     "Participant",
		JoinedAt: now,
		IsReady:  false,
	})
	session.UpdatedAt = now

	if err := c.store.Set(ctx, store.SessionPath(session.ID), session); err != nil {
		return nil, err
	}

	slog.Info("session joined", "session_id", session.ID, "participant_id", participantID,
		"participants", len(session.Participants))
	return session, nil
}

// Leave removes the caller from the session roster and rewrites it. The
// last participant out deletes the session node entirely. Leaving a
// session that no longer exists is a no-op. The host leaving does not
// hand the host role to anyone; a hostless session can never start
// voting.
func (c *Coordinator) Leave(ctx context.Context, sessionID, participantID string) error {
	if participantID == "" {
		return ErrNotAuthenticated
	}

	session, err := c.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	remaining := session.Participants[:0:0]
	for _, p := range session.Participants {
		if p.ID != participantID {
			remaining = append(remaining, p)
		}
	}
	session.Participants = remaining
	session.UpdatedAt = time.Now().UnixMilli()

	if len(session.Participants) == 0 {
		if err := c.store.Delete(ctx, store.SessionPath(sessionID)); err != nil {
			return err
		}
		slog.Info("session deleted, last participant left", "session_id", sessionID)
		return nil
	}

	if err := c.store.Set(ctx, store.SessionPath(sessionID), session); err != nil {
		return err
	}
	slog.Info("session left", "session_id", sessionID, "participant_id", participantID,
		"participants", len(session.Participants))
	return nil
}

// UpdateState writes only {state, updatedAt}. No transition guard runs
// anywhere: the caller (host, by convention) is trusted, and states move
// forward only because clients only ever request forward moves.
func (c *Coordinator) UpdateState(ctx context.Context, sessionID, state string) error {
	switch state {
	case models.StateWaiting, models.StateVoting, models.StateCompleted:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidState, state)
	}

	err := c.store.Update(ctx, store.SessionPath(sessionID), map[string]any{
		"state":     state,
		"updatedAt": time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	slog.Info("session state updated", "session_id", sessionID, "state", state)
	return nil
}

// Get reads one session by its store key.
func (c *Coordinator) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	ok, err := c.store.Get(ctx, store.SessionPath(sessionID), &session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

// FindByCode scans every live session for a normalized short-code match.
// O(live sessions) by design; codes have no index.
func (c *Coordinator) FindByCode(ctx context.Context, code string) (*models.Session, error) {
	code = shortcode.Normalize(code)

	var sessions map[string]models.Session
	ok, err := c.store.Get(ctx, store.SessionsRoot, &sessions)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	for id, s := range sessions {
		if shortcode.Normalize(s.ShortCode) == code {
			s.ID = id
			found := s
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Observe subscribes fn to live session updates. fn receives nil when
// the session is deleted. The returned unsubscribe is idempotent and
// must be called on teardown or the listener lives for the process
// lifetime.
func (c *Coordinator) Observe(sessionID string, fn func(*models.Session)) store.UnsubscribeFunc {
	return c.store.Watch(store.SessionPath(sessionID), func(snap store.Snapshot) {
		if !snap.Exists {
			fn(nil)
			return
		}
		var session models.Session
		if err := snap.Decode(&session); err != nil {
			slog.Error("failed to decode session snapshot", "session_id", sessionID, "error", err)
			return
		}
		fn(&session)
	})
}

// freshCode generates a short code and re-checks it against all live
// sessions, regenerating on collision.
func (c *Coordinator) freshCode(ctx context.Context) (string, error) {
	var sessions map[string]models.Session
	if _, err := c.store.Get(ctx, store.SessionsRoot, &sessions); err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		taken[shortcode.Normalize(s.ShortCode)] = true
	}

	for i := 0; i < codeAttempts; i++ {
		code, err := shortcode.Generate()
		if err != nil {
			return "", err
		}
		if !taken[code] {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate an unused session code in %d attempts", codeAttempts)
}
