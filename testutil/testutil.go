// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jbake1990/biteswipe/memstore"
	"github.com/jbake1990/biteswipe/middleware"
	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/session"
	"github.com/jbake1990/biteswipe/vote"
)

// Engine bundles a fresh in-memory store with the coordination layers
// built on it. Every test gets its own; nothing is shared.
type Engine struct {
	Store *memstore.Store
	Coord *session.Coordinator
	Agg   *vote.Aggregator
}

// SetupEngine creates a fresh in-memory engine and closes it with the test.
func SetupEngine(t *testing.T) *Engine {
	t.Helper()

	st := memstore.New()
	t.Cleanup(func() { st.Close() })

	return &Engine{
		Store: st,
		Coord: session.NewCoordinator(st),
		Agg:   vote.NewAggregator(st),
	}
}

// NewParticipantID returns a fresh anonymous identity, the same shape
// clients get from POST /participants.
func NewParticipantID() string {
	return uuid.NewString()
}

// CreateTestSession creates a session hosted by a fresh participant and
// returns the session and the host's ID.
func CreateTestSession(t *testing.T, e *Engine) (*models.Session, string) {
	t.Helper()

	hostID := NewParticipantID()
	s, err := e.Coord.Create(context.Background(), hostID)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return s, hostID
}

// JoinTestParticipant joins a fresh participant to the session by its
// short code and returns the participant's ID.
func JoinTestParticipant(t *testing.T, e *Engine, code string) string {
	t.Helper()

	participantID := NewParticipantID()
	if _, err := e.Coord.Join(context.Background(), code, participantID); err != nil {
		t.Fatalf("Failed to join test session: %v", err)
	}
	return participantID
}

// SubmitTestVote records a vote directly through the aggregator.
func SubmitTestVote(t *testing.T, e *Engine, sessionID, participantID, restaurantID, value string) {
	t.Helper()

	if err := e.Agg.Submit(context.Background(), sessionID, restaurantID, participantID, value); err != nil {
		t.Fatalf("Failed to submit test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request. A non-empty participantID
// is sent as the identity header.
func MakeRequest(method, path string, body interface{}, participantID string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if participantID != "" {
		req.Header.Set(middleware.ParticipantHeader, participantID)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
