package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"volunteens/auth-service/internal/session/repository"
)

// ErrSessionNotFound is returned when the target session does not exist,
// is already revoked, or belongs to another user. The three cases are not
// distinguished so session IDs cannot be probed.
var ErrSessionNotFound = errors.New("session not found")

// SessionView is a session as presented to its owner. Token and fingerprint
// hashes never leave the service.
type SessionView struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"userAgent"`
	IPAddress  string    `json:"ipAddress"`
	DeviceName string    `json:"deviceName"`
	LastUsedAt time.Time `json:"lastUsedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Current    bool      `json:"current"`
}

// Service lets users inspect and revoke their own sessions.
type Service struct {
	repo   repository.Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService returns a session management service.
func NewService(repo repository.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ListForUser returns the user's live sessions, marking the one backing the
// current request. Sessions past their expiry are filtered out even if not
// yet revoked.
func (s *Service) ListForUser(ctx context.Context, userID, currentSessionID string) ([]SessionView, error) {
	sessions, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]SessionView, 0, len(sessions))
	for _, sess := range sessions {
		if sess.IsExpiredAt(now) {
			continue
		}
		views = append(views, SessionView{
			ID:         sess.ID,
			UserAgent:  sess.UserAgent,
			IPAddress:  sess.IPAddress,
			DeviceName: sess.DeviceName,
			LastUsedAt: sess.LastUsedAt,
			CreatedAt:  sess.CreatedAt,
			ExpiresAt:  sess.ExpiresAt,
			Current:    sess.ID == currentSessionID,
		})
	}
	return views, nil
}

// Revoke revokes one of the user's own sessions. Revoking a session that does
// not belong to userID is refused.
func (s *Service) Revoke(ctx context.Context, userID, sessionID string) error {
	sess, err := s.repo.GetActive(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil || sess.UserID != userID {
		return ErrSessionNotFound
	}
	if err := s.repo.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("session revoked by owner", "user_id", userID, "session_id", sessionID)
	return nil
}

// RevokeOthers revokes every session of the user except the current one.
// Returns the sessions that were live before the sweep, for reporting.
func (s *Service) RevokeOthers(ctx context.Context, userID, currentSessionID string) (int, error) {
	live, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.repo.RevokeAllByUserExcept(ctx, userID, currentSessionID); err != nil {
		return 0, err
	}
	n := 0
	for _, sess := range live {
		if sess.ID != currentSessionID {
			n++
		}
	}
	s.logger.Info("other sessions revoked", "user_id", userID, "count", n)
	return n, nil
}
