package service

import "errors"

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
// Reuse detection and fingerprint mismatch are deliberately folded into
// ErrSessionInvalid: the response must not tell an attacker that a replay was
// noticed. The distinction survives only in logs and metrics.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidRegistration    = errors.New("invalid registration")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountNotActive       = errors.New("account not active")
	ErrPasswordPolicy         = errors.New("password must be at least 8 characters")

	// ErrInvalidRefresh: the refresh credential failed signature or expiry
	// checks. No session could be reliably identified, so nothing is revoked.
	ErrInvalidRefresh = errors.New("invalid refresh token")
	// ErrSessionInvalid: the session is missing, revoked, or was revoked just
	// now by reuse detection, a fingerprint mismatch, or a lost rotation race.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrSessionExpired: the session passed its refresh horizon and has been
	// revoked.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnavailable: a dependency (ledger, user store) failed or timed out.
	// Callers should retry with backoff; this is not an authentication
	// failure.
	ErrUnavailable = errors.New("dependency unavailable")
)
