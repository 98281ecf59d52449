package domain

import "time"

// Actions recorded in the security event log.
const (
	ActionLoginSuccess        = "login_success"
	ActionLoginFailure        = "login_failure"
	ActionLogout              = "logout"
	ActionTokenReuse          = "token_reuse"
	ActionFingerprintMismatch = "fingerprint_mismatch"
	ActionPasswordReset       = "password_reset"
	ActionEmailVerified       = "email_verified"
	ActionSessionRevoked      = "session_revoked"
)

// Event is one security-relevant occurrence, kept for review by staff with
// the system:logs permission.
type Event struct {
	ID        string
	UserID    string
	Action    string
	IP        string
	UserAgent string
	Metadata  string
	CreatedAt time.Time
}
