package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-api/internal/application/listing"
)

// ListingHandler serves the read-only catalog endpoints.
type ListingHandler struct {
	svc listing.Service
}

func NewListingHandler(svc listing.Service) *ListingHandler { return &ListingHandler{svc: svc} }

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	listings, next, err := h.svc.List(r.Context(), limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedListingsEnvelope{Data: listings, NextCursor: next})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
