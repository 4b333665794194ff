// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jbake1990/biteswipe/catalog"
	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/session"
	"github.com/jbake1990/biteswipe/vote"
)

// StreamEvent is one message on the session WebSocket feed. Exactly one
// of the payload fields is set, keyed by Type.
type StreamEvent struct {
	Type    string          `json:"type"` // "session", "votes" or "match"
	Session *models.Session `json:"session,omitempty"`
	Votes   models.VoteMap  `json:"votes,omitempty"`
	Match   *models.Match   `json:"match,omitempty"`
}

type StreamHandler struct {
	coord    *session.Coordinator
	agg      *vote.Aggregator
	catalog  *catalog.Fixture
	upgrader websocket.Upgrader
}

func NewStreamHandler(coord *session.Coordinator, agg *vote.Aggregator, cat *catalog.Fixture) *StreamHandler {
	return &StreamHandler{
		coord:   coord,
		agg:     agg,
		catalog: cat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The PWA frontend is served from a different origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream handles GET /sessions/{id}/stream. It upgrades to a WebSocket
// and pushes session snapshots, vote snapshots and consensus matches
// until the client disconnects. Each subscriber gets its own detector,
// so at-most-once match delivery holds per connection, not globally.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "session_id", sessionID)
		return
	}

	// One-producer-per-subscription events funnel. Sends never block a
	// store watcher: if the writer has fallen 64 events behind, the
	// event is dropped. Session and vote snapshots recur on the next
	// change anyway.
	events := make(chan StreamEvent, 64)
	push := func(e StreamEvent) {
		select {
		case events <- e:
		default:
			slog.Warn("stream subscriber too slow, dropping event",
				"session_id", sessionID, "type", e.Type)
		}
	}

	unsubSess := h.coord.Observe(sessionID, func(s *models.Session) {
		push(StreamEvent{Type: "session", Session: s})
	})
	unsubVotes := h.agg.ObserveVotes(sessionID, func(v models.VoteMap) {
		push(StreamEvent{Type: "votes", Votes: v})
	})
	det := vote.NewDetector(h.coord, h.agg, sessionID, func(con vote.Consensus) {
		restaurant, ok := h.catalog.Lookup(con.RestaurantID)
		if !ok {
			slog.Warn("consensus on unknown restaurant", "restaurant_id", con.RestaurantID)
			return
		}
		push(StreamEvent{Type: "match", Match: &models.Match{
			SessionID:  con.SessionID,
			Restaurant: restaurant,
			YesCount:   con.YesCount,
		}})
	})

	defer func() {
		det.Stop()
		unsubVotes()
		unsubSess()
		conn.Close()
	}()

	// Reader goroutine: the feed is one-way, but reading is what tells
	// us the peer went away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	slog.Info("stream opened", "session_id", sessionID, "remote", r.RemoteAddr)
	for {
		select {
		case e := <-events:
			if err := conn.WriteJSON(e); err != nil {
				slog.Info("stream closed", "session_id", sessionID, "error", err)
				return
			}
		case <-closed:
			slog.Info("stream closed", "session_id", sessionID)
			return
		}
	}
}
