package middleware

import (
	"context"

	authservice "volunteens/auth-service/internal/auth/service"
)

type contextKey struct{ name string }

var authContextKey = contextKey{"auth_context"}

// WithAuthContext returns a context carrying the verified identity.
// Handlers read it back via GetAuthContext.
func WithAuthContext(ctx context.Context, ac *authservice.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// GetAuthContext returns the verified identity from ctx and true if set.
func GetAuthContext(ctx context.Context) (*authservice.AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(*authservice.AuthContext)
	return ac, ok
}
