// Package middleware provides HTTP middleware for authenticated routes.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	authservice "volunteens/auth-service/internal/auth/service"
)

const bearerPrefix = "bearer "

// AccessCookieName is the cookie carrying the access token for browser
// clients. The Authorization header takes precedence when both are present.
const AccessCookieName = "accessToken"

// Verifier resolves a presented access token into a verified identity.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*authservice.AuthContext, error)
}

// RequireAuth verifies the request's access token and stores the resulting
// AuthContext in the request context. Unverified requests get 401; a store
// outage gets 503 so clients retry instead of re-authenticating.
func RequireAuth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractAccessToken(r)
			if token == "" {
				unauthorized(w)
				return
			}
			ac, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, authservice.ErrUnavailable) {
					writeError(w, http.StatusServiceUnavailable, "service unavailable")
					return
				}
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
		})
	}
}

// RequirePermission gates a route on one effective permission. Must run after
// RequireAuth.
func RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := GetAuthContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			for _, p := range ac.Permissions {
				if p == perm {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

// ExtractAccessToken returns the access token from the Authorization header
// or, failing that, the access cookie. Empty when neither is present.
func ExtractAccessToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("Authorization")); v != "" {
		if len(v) > len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(v[len(bearerPrefix):])
		}
		return ""
	}
	if c, err := r.Cookie(AccessCookieName); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "authentication required")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
