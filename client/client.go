// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jbake1990/biteswipe/catalog"
	"github.com/jbake1990/biteswipe/identity"
	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/session"
	"github.com/jbake1990/biteswipe/store"
	"github.com/jbake1990/biteswipe/vote"
)

// Screen identifies what a client is showing. Transitions are driven by
// observed session state and consensus events, never by one screen
// calling into another; the one exception is the host's explicit start,
// which performs the state=voting write and lets the observation loop
// move everyone (host included).
type Screen string

const (
	ScreenHome    Screen = "home"
	ScreenWaiting Screen = "waiting-room"
	ScreenVoting  Screen = "voting"
	ScreenMatch   Screen = "match"
)

var (
	// ErrNotHost means a non-host tried to start voting. Convention
	// only - the store would accept the write - but the UI never offers
	// it, so the engine doesn't either.
	ErrNotHost = errors.New("only the host can start voting")

	// ErrTooFewParticipants means voting can't start until at least two
	// participants are in the waiting room.
	ErrTooFewParticipants = errors.New("need at least two participants to start voting")

	// ErrNoSession means the client isn't in a session.
	ErrNoSession = errors.New("no active session")
)

// Events are the presentation callbacks a Client drives. All optional.
type Events struct {
	OnScreen    func(Screen)
	OnMatch     func(models.Match)
	OnConnected func(bool)
}

// Client is one participant's engine instance: it issues coordinator and
// aggregator operations under a stable anonymous identity and reacts to
// store subscriptions exactly like every other client, with no special
// role beyond the host convention.
type Client struct {
	coord         *session.Coordinator
	agg           *vote.Aggregator
	catalog       *catalog.Fixture
	participantID string
	events        Events

	mu       sync.Mutex
	current  *models.Session
	screen   Screen
	detach   func()
	unsubCon store.UnsubscribeFunc
}

// New builds a client over the store with an identity from provider.
func New(st store.Store, cat *catalog.Fixture, provider identity.Provider, events Events) (*Client, error) {
	pid, err := provider.ParticipantID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrNotAuthenticated, err)
	}

	c := &Client{
		coord:         session.NewCoordinator(st),
		agg:           vote.NewAggregator(st),
		catalog:       cat,
		participantID: pid,
		events:        events,
		screen:        ScreenHome,
	}
	c.unsubCon = st.WatchConnected(func(v bool) {
		if events.OnConnected != nil {
			events.OnConnected(v)
		}
	})
	return c, nil
}

// ParticipantID returns the client's stable anonymous identity.
func (c *Client) ParticipantID() string { return c.participantID }

// Screen returns the current screen.
func (c *Client) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Session returns the latest observed session, or nil outside one. The
// copy is a disposable projection; the store stays authoritative.
func (c *Client) Session() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	s := *c.current
	return &s
}

// CreateSession makes a new session with this client as host and enters
// the waiting room.
func (c *Client) CreateSession(ctx context.Context) (*models.Session, error) {
	s, err := c.coord.Create(ctx, c.participantID)
	if err != nil {
		return nil, err
	}
	c.enter(s, ScreenWaiting)
	return s, nil
}

// JoinSession joins by short code and enters the screen matching the
// session's observed state.
func (c *Client) JoinSession(ctx context.Context, code string) (*models.Session, error) {
	s, err := c.coord.Join(ctx, code, c.participantID)
	if err != nil {
		return nil, err
	}
	screen := ScreenWaiting
	if s.State == models.StateVoting {
		screen = ScreenVoting
	}
	c.enter(s, screen)
	return s, nil
}

// StartVoting performs the host's state=voting write. Everyone,
// including the host, then moves screens off the observed update.
func (c *Client) StartVoting(ctx context.Context) error {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}
	if s.HostID != c.participantID {
		return ErrNotHost
	}
	if len(s.Participants) < 2 {
		return ErrTooFewParticipants
	}
	return c.coord.UpdateState(ctx, s.ID, models.StateVoting)
}

// Swipe records the decision a swipe gesture means: right is yes, left
// is no.
func (c *Client) Swipe(ctx context.Context, restaurantID string, like bool) error {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}
	value := models.VoteNo
	if like {
		value = models.VoteYes
	}
	return c.agg.Submit(ctx, s.ID, restaurantID, c.participantID, value)
}

// LeaveSession removes this client from its session and returns home.
func (c *Client) LeaveSession(ctx context.Context) error {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	err := c.coord.Leave(ctx, s.ID, c.participantID)
	c.exit()
	return err
}

// Close releases every live subscription the client holds.
func (c *Client) Close() {
	c.exit()
	c.unsubCon()
}

// enter wires the session and consensus observers for sessionID and
// switches screens. Any previous session's subscriptions are released
// first, exactly once.
func (c *Client) enter(s *models.Session, screen Screen) {
	c.exit()

	unsubSess := c.coord.Observe(s.ID, c.onSession)
	detector := vote.NewDetector(c.coord, c.agg, s.ID, c.onConsensus)

	var once sync.Once
	c.mu.Lock()
	c.current = s
	c.detach = func() {
		once.Do(func() {
			unsubSess()
			detector.Stop()
		})
	}
	c.mu.Unlock()

	c.setScreen(screen)
}

func (c *Client) exit() {
	c.mu.Lock()
	detach := c.detach
	c.detach = nil
	c.current = nil
	c.mu.Unlock()

	if detach != nil {
		detach()
	}
	c.setScreen(ScreenHome)
}

// onSession is the observation loop: every screen decision reads the
// freshest snapshot, never a memoized state value.
func (c *Client) onSession(s *models.Session) {
	if s == nil {
		// Session deleted remotely.
		c.mu.Lock()
		gone := c.current != nil
		c.current = nil
		c.mu.Unlock()
		if gone {
			slog.Info("session disappeared, returning home")
			c.setScreen(ScreenHome)
		}
		return
	}

	c.mu.Lock()
	c.current = s
	screen := c.screen
	c.mu.Unlock()

	switch screen {
	case ScreenWaiting:
		if s.State == models.StateVoting {
			c.setScreen(ScreenVoting)
		}
	case ScreenVoting:
		if s.State != models.StateVoting {
			c.setScreen(ScreenHome)
		}
	}
}

func (c *Client) onConsensus(con vote.Consensus) {
	restaurant, ok := c.catalog.Lookup(con.RestaurantID)
	if !ok {
		slog.Warn("consensus on unknown restaurant", "restaurant_id", con.RestaurantID)
		return
	}

	c.setScreen(ScreenMatch)
	if c.events.OnMatch != nil {
		c.events.OnMatch(models.Match{
			SessionID:  con.SessionID,
			Restaurant: restaurant,
			YesCount:   con.YesCount,
		})
	}
}

func (c *Client) setScreen(s Screen) {
	c.mu.Lock()
	if c.screen == s {
		c.mu.Unlock()
		return
	}
	c.screen = s
	c.mu.Unlock()

	slog.Debug("screen changed", "screen", s)
	if c.events.OnScreen != nil {
		c.events.OnScreen(s)
	}
}
