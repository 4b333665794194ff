// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jbake1990/biteswipe/identity"
	"github.com/jbake1990/biteswipe/middleware"
	"github.com/jbake1990/biteswipe/models"
	"github.com/jbake1990/biteswipe/session"
)

type SessionHandler struct {
	coord *session.Coordinator
}

func NewSessionHandler(coord *session.Coordinator) *SessionHandler {
	return &SessionHandler{coord: coord}
}

// RegisterParticipant handles POST /participants. It plays the identity
// provider for browser clients: one opaque anonymous ID per device,
// which the client stores and sends as X-Participant-ID from then on.
func (h *SessionHandler) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	id := identity.NewID()
	slog.Info("participant registered", "participant_id", id)
	middleware.JSONResponse(w, http.StatusCreated, models.RegisterParticipantResponse{
		ParticipantID: id,
	})
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	participantID := middleware.ParticipantID(r)

	s, err := h.coord.Create(r.Context(), participantID)
	if errors.Is(err, session.ErrNotAuthenticated) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Participant-ID header required")
		return
	}
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: s.ID,
		ShortCode: s.ShortCode,
	})
}

// JoinSession handles POST /sessions/join
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	participantID := middleware.ParticipantID(r)

	var req models.JoinSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	s, err := h.coord.Join(r.Context(), req.Code, participantID)
	if errors.Is(err, session.ErrNotAuthenticated) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Participant-ID header required")
		return
	}
	if errors.Is(err, session.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to join session", "error", err, "code", req.Code)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s)
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	s, err := h.coord.Get(r.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to read session", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s)
}

// LeaveSession handles POST /sessions/{id}/leave
func (h *SessionHandler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	participantID := middleware.ParticipantID(r)

	err := h.coord.Leave(r.Context(), sessionID, participantID)
	if errors.Is(err, session.ErrNotAuthenticated) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Participant-ID header required")
		return
	}
	if err != nil {
		slog.Error("failed to leave session", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to leave session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateState handles POST /sessions/{id}/state. Host-only by
// convention; nothing here verifies the caller is the host, exactly as
// nothing in the store would.
func (h *SessionHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req models.UpdateStateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.coord.UpdateState(r.Context(), sessionID, req.State)
	if errors.Is(err, session.ErrInvalidState) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "state must be waiting, voting or completed")
		return
	}
	if err != nil {
		slog.Error("failed to update session state", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update session state")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
