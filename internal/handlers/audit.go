package handlers

import (
	"net/http"

	"coinmate/internal/middleware"
	"coinmate/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.audit.History(r.Context(), middleware.ScopeFromContext(r.Context()), services.HistoryInput{
		Object:   chi.URLParam(r, "object"),
		ObjectID: chi.URLParam(r, "id"),
	})
	if err != nil {
		respondServiceError(w, "audit_history", err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}
