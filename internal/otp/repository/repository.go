package repository

import (
	"context"
	"time"

	"volunteens/auth-service/internal/otp/domain"
)

// Repository defines persistence for one-time codes. Consume must be
// race-safe: two concurrent consumptions of the same code must not both
// succeed.
type Repository interface {
	Create(ctx context.Context, o *domain.OTP) error
	// GetByToken returns the code matching token and type, or nil if none.
	GetByToken(ctx context.Context, token string, typ domain.Type) (*domain.OTP, error)
	// Consume marks the code used at the given time. Returns false when the
	// code was already used (lost race or replay).
	Consume(ctx context.Context, id string, at time.Time) (bool, error)
	// InvalidateUnused marks all unconsumed codes of the given type for the
	// user as used, so only the newest code stays live.
	InvalidateUnused(ctx context.Context, userID string, typ domain.Type) error
}
