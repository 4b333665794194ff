// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/jbake1990/biteswipe/catalog"
	"github.com/jbake1990/biteswipe/middleware"
)

type CatalogHandler struct {
	source catalog.Source
}

func NewCatalogHandler(source catalog.Source) *CatalogHandler {
	return &CatalogHandler{source: source}
}

// ListRestaurants handles GET /restaurants
func (h *CatalogHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.source.Restaurants())
}
