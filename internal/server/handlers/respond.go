// Package handlers implements the HTTP endpoints of the auth service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	authservice "volunteens/auth-service/internal/auth/service"
	otpservice "volunteens/auth-service/internal/otp/service"
	"volunteens/auth-service/internal/security"
	sessionservice "volunteens/auth-service/internal/session/service"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

// writeServiceError maps service sentinel errors to HTTP statuses. Unknown
// errors become an opaque 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrInvalidRegistration),
		errors.Is(err, authservice.ErrPasswordPolicy),
		errors.Is(err, otpservice.ErrOTPInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, authservice.ErrEmailAlreadyRegistered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, authservice.ErrInvalidCredentials),
		errors.Is(err, authservice.ErrInvalidRefresh),
		errors.Is(err, authservice.ErrSessionInvalid),
		errors.Is(err, authservice.ErrSessionExpired),
		errors.Is(err, security.ErrTokenExpired),
		errors.Is(err, security.ErrTokenMalformed):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, authservice.ErrAccountNotActive):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, sessionservice.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, authservice.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
