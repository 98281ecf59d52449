package handlers

import (
	"errors"
	"net/http"

	authservice "volunteens/auth-service/internal/auth/service"
	"volunteens/auth-service/internal/security"
	"volunteens/auth-service/internal/server/middleware"
)

// InternalHandler serves the service-to-service verify endpoint. Sibling
// services call it to translate a bearer access token into an identity and
// effective permission set.
type InternalHandler struct {
	verify *authservice.VerifyService
}

// NewInternalHandler returns an InternalHandler.
func NewInternalHandler(verify *authservice.VerifyService) *InternalHandler {
	return &InternalHandler{verify: verify}
}

type verifyResponse struct {
	Valid       bool     `json:"valid"`
	Reason      string   `json:"reason,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	SessionID   string   `json:"sessionId,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Verify handles POST /api/v1/internal/verify. Invalid tokens get a 200 with
// valid=false and a structured reason; only infrastructure failures surface
// as 503 so callers can distinguish "retry" from "reject".
func (h *InternalHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractAccessToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: "missing_token"})
		return
	}

	ac, err := h.verify.Verify(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: "token_expired"})
		case errors.Is(err, security.ErrTokenMalformed):
			writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: "token_malformed"})
		case errors.Is(err, authservice.ErrSessionInvalid):
			writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: "session_revoked"})
		default:
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
		}
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Valid:       true,
		UserID:      ac.UserID,
		Email:       ac.Email,
		Role:        ac.Role,
		SessionID:   ac.SessionID,
		Permissions: ac.Permissions,
	})
}
