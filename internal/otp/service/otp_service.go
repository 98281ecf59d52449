package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"volunteens/auth-service/internal/otp/domain"
	"volunteens/auth-service/internal/otp/repository"
)

// ErrOTPInvalid is returned when a code is unknown, of the wrong type, already
// used, or expired. Callers cannot distinguish which; they must request a new
// code.
var ErrOTPInvalid = errors.New("otp invalid or expired")

// Service issues and consumes one-time codes. Expiry is fixed per type at
// issue time; consumption is exactly-once.
type Service struct {
	repo repository.Repository
	now  func() time.Time
}

// NewService returns an OTP service using the given repository.
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Issue creates a new code for the user. For password resets, any previous
// unconsumed reset codes are invalidated first so at most one reset link is
// live per user.
func (s *Service) Issue(ctx context.Context, userID string, typ domain.Type) (*domain.OTP, error) {
	ttl, err := domain.TTL(typ)
	if err != nil {
		return nil, err
	}
	if typ == domain.TypePasswordReset {
		if err := s.repo.InvalidateUnused(ctx, userID, typ); err != nil {
			return nil, err
		}
	}
	now := s.now()
	o := &domain.OTP{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     uuid.New().String(),
		Type:      typ,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Consume marks the code matching token and type as used and returns it.
// Returns ErrOTPInvalid when the code is unknown, of another type, already
// used, or expired. The mark-used step is conditional in the repository, so a
// concurrent double consumption succeeds at most once.
func (s *Service) Consume(ctx context.Context, token string, typ domain.Type) (*domain.OTP, error) {
	o, err := s.repo.GetByToken(ctx, token, typ)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if o == nil || !o.Consumable(now) {
		return nil, ErrOTPInvalid
	}
	ok, err := s.repo.Consume(ctx, o.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOTPInvalid
	}
	o.Used = true
	o.UsedAt = &now
	return o, nil
}
