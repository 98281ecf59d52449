package domain

import "time"

// Session is the durable ledger record for one authenticated login. At most
// one non-revoked refresh token hash is valid per session at any time; the
// hash is replaced only by an atomic rotation.
type Session struct {
	ID     string
	UserID string

	// RefreshTokenHash is the SHA-256 hash of the currently valid refresh
	// token. The raw token is never stored. Empty only in the window between
	// insert and the first hash update at login.
	RefreshTokenHash string

	// FingerprintHash is the SHA-256 hash of the per-login client secret.
	FingerprintHash string

	// Descriptive, non-authoritative client info.
	UserAgent  string
	IPAddress  string
	DeviceName string

	LastUsedAt time.Time
	ExpiresAt  time.Time
	Revoked    bool
	CreatedAt  time.Time
}

// IsExpiredAt reports whether the session's refresh horizon has passed at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}
