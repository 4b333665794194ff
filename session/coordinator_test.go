// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jbake1990/biteswipe/memstore"
	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/shortcode"
	"github.com/jbake1990/biteswipe/store"
)

func newCoordinator(t *testing.T) (*Coordinator, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	t.Cleanup(func() { st.Close() })
	return NewCoordinator(st), st
}

func TestCreateSession(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	s, err := c.Create(ctx, "host-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !shortcode.IsValid(s.ShortCode) {
		t.Errorf("Invalid short code %q", s.ShortCode)
	}
	if s.HostID != "host-1" {
		t.Errorf("Expected host-1 as host, got %q", s.HostID)
	}
	if len(s.Participants) != 1 || s.Participants[0].ID != "host-1" {
		t.Errorf("Expected creator as sole participant, got %+v", s.Participants)
	}
	if s.Participants[0].Name != "Host" {
		t.Errorf("Expected host participant named Host, got %q", s.Participants[0].Name)
	}
	if s.State != models.StateWaiting {
		t.Errorf("Expected waiting state, got %q", s.State)
	}

	// The store copy is the source of truth; re-read it.
	got, err := c.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ShortCode != s.ShortCode {
		t.Errorf("Stored session differs: %+v", got)
	}
}

func TestCreateRequiresIdentity(t *testing.T) {
	c, _ := newCoordinator(t)

	_, err := c.Create(context.Background(), "")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestJoinByCode(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")

	joined, err := c.Join(ctx, created.ShortCode, "guest-1")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if len(joined.Participants) != 2 {
		t.Fatalf("Expected 2 participants, got %d", len(joined.Participants))
	}
	if joined.Participants[1].ID != "guest-1" || joined.Participants[1].Name != "Participant" {
		t.Errorf("Unexpected joined participant: %+v", joined.Participants[1])
	}
	if joined.UpdatedAt < created.UpdatedAt {
		t.Error("Expected updatedAt bump on join")
	}
}

func TestJoinCaseInsensitive(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")

	joined, err := c.Join(ctx, strings.ToLower(created.ShortCode), "guest-1")
	if err != nil {
		t.Fatalf("Lower-case join failed: %v", err)
	}
	if joined.ID != created.ID {
		t.Errorf("Joined wrong session: %q vs %q", joined.ID, created.ID)
	}
}

func TestJoinIdempotent(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")
	c.Join(ctx, created.ShortCode, "guest-1")

	again, err := c.Join(ctx, created.ShortCode, "guest-1")
	if err != nil {
		t.Fatalf("Repeat join failed: %v", err)
	}
	if len(again.Participants) != 2 {
		t.Errorf("Repeat join grew the roster: %d participants", len(again.Participants))
	}

	stored, _ := c.Get(ctx, created.ID)
	if len(stored.Participants) != 2 {
		t.Errorf("Stored roster grew on repeat join: %d", len(stored.Participants))
	}
}

func TestJoinUnknownCode(t *testing.T) {
	c, _ := newCoordinator(t)

	_, err := c.Join(context.Background(), "ZZZ999", "guest-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestJoinMalformedCode(t *testing.T) {
	c, _ := newCoordinator(t)

	for _, code := range []string{"", "AB", "ABC-12", "TOOLONG1"} {
		if _, err := c.Join(context.Background(), code, "guest-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Join(%q): expected ErrNotFound, got %v", code, err)
		}
	}
}

func TestJoinPreservesVotes(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")
	st.Set(ctx, store.VotePath(created.ID, "r1", "host-1"), models.Vote{
		ParticipantID: "host-1", RestaurantID: "r1", Vote: models.VoteYes, Timestamp: 1,
	})

	if _, err := c.Join(ctx, created.ShortCode, "guest-1"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// The whole-object rewrite on join must carry the votes subtree.
	if ok, _ := st.Get(ctx, store.VotePath(created.ID, "r1", "host-1"), nil); !ok {
		t.Error("Join rewrote the session without its votes subtree")
	}
}

func TestLeaveRemovesParticipant(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")
	c.Join(ctx, created.ShortCode, "guest-1")

	if err := c.Leave(ctx, created.ID, "guest-1"); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	got, _ := c.Get(ctx, created.ID)
	if len(got.Participants) != 1 || got.Participants[0].ID != "host-1" {
		t.Errorf("Expected host alone after leave, got %+v", got.Participants)
	}
}

func TestLastLeaveDeletesSession(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")
	code := created.ShortCode

	if err := c.Leave(ctx, created.ID, "host-1"); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	if _, err := c.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected session gone, got %v", err)
	}

	// The old code no longer joins anything.
	if _, err := c.Join(ctx, code, "latecomer"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound joining dead code, got %v", err)
	}
}

func TestLeaveMissingSessionIsNoop(t *testing.T) {
	c, _ := newCoordinator(t)

	if err := c.Leave(context.Background(), "no-such-session", "p1"); err != nil {
		t.Errorf("Expected silent no-op, got %v", err)
	}
}

// The host role never transfers. After the host leaves, the session
// keeps a hostId pointing at nobody on the roster and can no longer be
// started; this is a known product gap, pinned here on purpose.
func TestLeaveHostNoTransfer(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")
	c.Join(ctx, created.ShortCode, "guest-1")

	if err := c.Leave(ctx, created.ID, "host-1"); err != nil {
		t.Fatalf("Host leave failed: %v", err)
	}

	got, _ := c.Get(ctx, created.ID)
	if got.HostID != "host-1" {
		t.Errorf("Host unexpectedly transferred to %q", got.HostID)
	}
	if got.HasParticipant(got.HostID) {
		t.Error("Departed host still on the roster")
	}
}

func TestUpdateStatePartialWrite(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")

	if err := c.UpdateState(ctx, created.ID, models.StateVoting); err != nil {
		t.Fatalf("UpdateState failed: %v", err)
	}

	got, _ := c.Get(ctx, created.ID)
	if got.State != models.StateVoting {
		t.Errorf("Expected voting state, got %q", got.State)
	}
	// Partial write: everything else untouched.
	if got.HostID != "host-1" || len(got.Participants) != 1 || got.ShortCode != created.ShortCode {
		t.Errorf("Partial state write disturbed other fields: %+v", got)
	}
}

func TestUpdateStateRejectsUnknownValue(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")
	if err := c.UpdateState(ctx, created.ID, "paused"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestObserveSeesUpdatesAndDeletion(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")

	updates := make(chan *models.Session, 10)
	unsub := c.Observe(created.ID, func(s *models.Session) { updates <- s })
	defer unsub()

	if first := waitSession(t, updates); first == nil || first.State != models.StateWaiting {
		t.Fatalf("Unexpected initial observation: %+v", first)
	}

	c.UpdateState(ctx, created.ID, models.StateVoting)
	if got := waitSession(t, updates); got == nil || got.State != models.StateVoting {
		t.Fatalf("Expected voting observation, got %+v", got)
	}

	c.Leave(ctx, created.ID, "host-1")
	if got := waitSession(t, updates); got != nil {
		t.Fatalf("Expected nil observation on deletion, got %+v", got)
	}
}

func TestObserveUnsubscribeIdempotent(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, "host-1")

	unsub := c.Observe(created.ID, func(*models.Session) {})
	unsub()
	unsub() // must not panic or disturb anything

	// A fresh observer still works after the double release.
	updates := make(chan *models.Session, 10)
	unsub2 := c.Observe(created.ID, func(s *models.Session) { updates <- s })
	defer unsub2()
	if got := waitSession(t, updates); got == nil {
		t.Fatal("Fresh observer got nothing after a double release elsewhere")
	}
}

func TestConcurrentCreatesGetDistinctCodes(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	codes := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := c.Create(ctx, "host-"+string(rune('a'+i)))
			if err != nil {
				t.Errorf("Create failed: %v", err)
				return
			}
			codes <- s.ShortCode
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Fatalf("Duplicate short code %q across concurrent creates", code)
		}
		seen[code] = true
	}
}

func waitSession(t *testing.T, ch chan *models.Session) *models.Session {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for session observation")
		return nil
	}
}
