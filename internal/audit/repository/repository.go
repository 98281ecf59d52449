package repository

import (
	"context"

	"volunteens/auth-service/internal/audit/domain"
)

// Repository persists and queries security events.
type Repository interface {
	// Create persists one event. The event must have ID set.
	Create(ctx context.Context, e *domain.Event) error
	// ListRecent returns events newest first, paginated by limit and offset.
	ListRecent(ctx context.Context, limit, offset int32) ([]*domain.Event, error)
	// ListByUser returns the user's events newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.Event, error)
}
