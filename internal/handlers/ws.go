package handlers

import (
	"net/http"

	"coinmate/internal/middleware"
	"coinmate/internal/websocket"
)

// WSChanges streams the caller's committed mutations.
func (h *Handler) WSChanges(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(w, r, h.hub, middleware.ScopeFromContext(r.Context()).UserID())
}
