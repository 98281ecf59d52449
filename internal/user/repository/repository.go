package repository

import (
	"context"

	"volunteens/auth-service/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateStatus transitions the account status (e.g. pending_verification
	// to active after email verification).
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
