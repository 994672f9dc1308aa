package handlers

import (
	"net/http"

	"coinmate/internal/middleware"
	"coinmate/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.spaces.List(r.Context(), middleware.ScopeFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, "list_spaces", err)
		return
	}
	respondJSON(w, http.StatusOK, spaces)
}

func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSpaceInput
	if !decodeJSON(w, r, &req) {
		return
	}
	space, err := h.spaces.Create(r.Context(), middleware.ScopeFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, "create_space", err)
		return
	}
	respondJSON(w, http.StatusCreated, space)
}

func (h *Handler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	space, err := h.spaces.Delete(r.Context(), middleware.ScopeFromContext(r.Context()), services.IDInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		respondServiceError(w, "delete_space", err)
		return
	}
	respondJSON(w, http.StatusOK, space)
}
