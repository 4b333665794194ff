// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Session state constants
const (
	StateWaiting   = "waiting"
	StateVoting    = "voting"
	StateCompleted = "completed"
)

// Vote value constants
const (
	VoteYes = "yes"
	VoteNo  = "no"
)

// Request types

type JoinSessionRequest struct {
	Code string `json:"code"`
}

type UpdateStateRequest struct {
	State string `json:"state"`
}

type SubmitVoteRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Vote         string `json:"vote"`
}

// Response types

type RegisterParticipantResponse struct {
	ParticipantID string `json:"participant_id"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	ShortCode string `json:"short_code"`
}

type SubmitVoteResponse struct {
	RestaurantID string `json:"restaurant_id"`
	Vote         string `json:"vote"`
}

// Domain types

// Participant is one member of a session. Created on join, removed on
// leave, never otherwise mutated. ID is the join/leave/vote correlation key.
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt"`
	IsReady  bool   `json:"isReady"`
}

// Session is the shared unit of coordination. The store copy is the sole
// source of truth; every in-client Session is a disposable projection.
type Session struct {
	ID           string        `json:"id"`
	ShortCode    string        `json:"shortCode"`
	HostID       string        `json:"hostId"`
	Participants []Participant `json:"participants"`
	State        string        `json:"state"`
	CreatedAt    int64         `json:"createdAt"`
	UpdatedAt    int64         `json:"updatedAt"`

	// Votes is the nested votes subtree. It lives under the session node
	// in the store, so it must round-trip through whole-object session
	// rewrites (join, leave) or those rewrites would erase it.
	Votes VoteMap `json:"votes,omitempty"`
}

// HasParticipant reports whether id is already on the roster.
func (s *Session) HasParticipant(id string) bool {
	for _, p := range s.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Vote is one participant's decision on one restaurant. A later vote at
// the same (restaurant, participant) path overwrites the earlier one.
type Vote struct {
	ParticipantID string `json:"participantId"`
	RestaurantID  string `json:"restaurantId"`
	Vote          string `json:"vote"`
	Timestamp     int64  `json:"timestamp"`
}

// VoteMap is the full vote state of a session:
// restaurantID -> participantID -> Vote.
type VoteMap map[string]map[string]Vote

// Restaurant is a read-only candidate record supplied by the catalog.
// YelpID is the key votes are aggregated under.
type Restaurant struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Cuisine  string  `json:"cuisine"`
	Rating   float64 `json:"rating"`
	Price    string  `json:"price"`
	Distance string  `json:"distance"`
	ImageURL string  `json:"imageURL,omitempty"`
	Address  string  `json:"address"`
	YelpID   string  `json:"yelpId"`
}

// Match is the consensus event: every current participant voted yes on
// the restaurant. Emitted at most once per restaurant per client.
type Match struct {
	SessionID  string     `json:"session_id"`
	Restaurant Restaurant `json:"restaurant"`
	YesCount   int        `json:"yes_count"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
