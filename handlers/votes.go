// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jbake1990/biteswipe/middleware"
	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/session"
	"github.com/jbake1990/biteswipe/vote"
)

type VoteHandler struct {
	agg *vote.Aggregator
}

func NewVoteHandler(agg *vote.Aggregator) *VoteHandler {
	return &VoteHandler{agg: agg}
}

// SubmitVote handles POST /sessions/{id}/votes
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	participantID := middleware.ParticipantID(r)

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RestaurantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	err := h.agg.Submit(r.Context(), sessionID, req.RestaurantID, participantID, req.Vote)
	if errors.Is(err, session.ErrNotAuthenticated) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Participant-ID header required")
		return
	}
	if errors.Is(err, vote.ErrInvalidVote) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote must be yes or no")
		return
	}
	if err != nil {
		slog.Error("failed to submit vote", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		RestaurantID: req.RestaurantID,
		Vote:         req.Vote,
	})
}

// GetVotes handles GET /sessions/{id}/votes
func (h *VoteHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	votes, err := h.agg.Votes(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to read votes", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, votes)
}
