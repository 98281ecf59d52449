package repository

import (
	"context"
	"time"

	"volunteens/auth-service/internal/session/domain"
)

// Repository defines persistence for the session ledger. Implementations must
// make Rotate atomic per session: two concurrent rotations of the same session
// must not both succeed with different resulting hashes.
type Repository interface {
	// Create persists a new non-revoked session. The refresh hash may be a
	// placeholder until UpdateRefreshHash is called.
	Create(ctx context.Context, s *domain.Session) error
	// GetByID returns the session for id regardless of revocation, or nil if
	// not found.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// GetActive returns the session for id only if it is not revoked; nil
	// when missing or revoked.
	GetActive(ctx context.Context, id string) (*domain.Session, error)
	// UpdateRefreshHash sets the session's refresh token hash after the
	// initial token issuance at login.
	UpdateRefreshHash(ctx context.Context, id, refreshTokenHash string) error
	// Rotate atomically swaps oldHash for newHash and bumps last_used_at.
	// Returns false when the session was concurrently revoked or its hash no
	// longer equals oldHash (the caller lost the rotation race).
	Rotate(ctx context.Context, id, oldHash, newHash string, now time.Time) (bool, error)
	// Revoke marks the session revoked. Idempotent.
	Revoke(ctx context.Context, id string) error
	// RevokeAllByUser revokes every session of the user. Idempotent.
	RevokeAllByUser(ctx context.Context, userID string) error
	// RevokeAllByUserExcept revokes every session of the user except keepID.
	// Idempotent.
	RevokeAllByUserExcept(ctx context.Context, userID, keepID string) error
	// ListActiveByUser returns the user's non-revoked sessions, most recently
	// used first.
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error)
}
