package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"volunteens/auth-service/internal/server/middleware"
	sessionservice "volunteens/auth-service/internal/session/service"
)

// SessionHandler lets an authenticated user inspect and revoke their own
// sessions.
type SessionHandler struct {
	sessions *sessionservice.Service
}

// NewSessionHandler returns a SessionHandler.
func NewSessionHandler(sessions *sessionservice.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List handles GET /api/v1/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	views, err := h.sessions.ListForUser(r.Context(), ac.UserID, ac.SessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Revoke handles DELETE /api/v1/sessions/{id}.
func (h *SessionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id := mux.Vars(r)["id"]
	if err := h.sessions.Revoke(r.Context(), ac.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revoked": id})
}

// RevokeOthers handles DELETE /api/v1/sessions. The current session survives.
func (h *SessionHandler) RevokeOthers(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	n, err := h.sessions.RevokeOthers(r.Context(), ac.UserID, ac.SessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revokedCount": n})
}
