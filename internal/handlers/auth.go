package handlers

import (
	"net/http"

	"coinmate/internal/middleware"
	"coinmate/internal/services"
)

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.users.SignUp(r.Context(), middleware.ScopeFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, "signup", err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.users.SignIn(r.Context(), middleware.ScopeFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, "signin", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Me returns the caller, with a new token once the current one is due for refresh.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.Me(r.Context(), middleware.ScopeFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, "me", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
