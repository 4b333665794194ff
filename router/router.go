// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/jbake1990/biteswipe/catalog"
	"github.com/jbake1990/biteswipe/handlers"
	"github.com/jbake1990/biteswipe/middleware"
	"github.com/jbake1990/biteswipe/session"
	"github.com/jbake1990/biteswipe/store"
	"github.com/jbake1990/biteswipe/vote"
)

func NewRouter(st store.Store, cat *catalog.Fixture) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize the engine and handlers
	coord := session.NewCoordinator(st)
	agg := vote.NewAggregator(st)
	sessionHandler := handlers.NewSessionHandler(coord)
	voteHandler := handlers.NewVoteHandler(agg)
	catalogHandler := handlers.NewCatalogHandler(cat)
	streamHandler := handlers.NewStreamHandler(coord, agg, cat)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Identity
	mux.HandleFunc("POST /participants", middleware.WithLogging(sessionHandler.RegisterParticipant))

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("POST /sessions/join", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /sessions/{id}/leave", middleware.WithLogging(sessionHandler.LeaveSession))
	mux.HandleFunc("POST /sessions/{id}/state", middleware.WithLogging(sessionHandler.UpdateState))

	// Voting
	mux.HandleFunc("POST /sessions/{id}/votes", middleware.WithLogging(voteHandler.SubmitVote))
	mux.HandleFunc("GET /sessions/{id}/votes", middleware.WithLogging(voteHandler.GetVotes))

	// Live feed (WebSocket); logs its own lifecycle, so no WithLogging
	mux.HandleFunc("GET /sessions/{id}/stream", streamHandler.Stream)

	// Restaurant candidates
	mux.HandleFunc("GET /restaurants", middleware.WithLogging(catalogHandler.ListRestaurants))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("biteswipe API v1"))
	})

	return mux
}
