// Package audit records security-relevant auth events for later review.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"volunteens/auth-service/internal/audit/domain"
	auditrepo "volunteens/auth-service/internal/audit/repository"
)

// Recorder writes a single security event. Record is best-effort: failures
// are logged and do not affect the caller.
type Recorder interface {
	Record(ctx context.Context, userID, action, ip, userAgent, metadata string)
}

// Logger implements Recorder on top of the event repository.
type Logger struct {
	repo   auditrepo.Repository
	logger *slog.Logger
}

// NewLogger returns a Recorder that persists to repo.
func NewLogger(repo auditrepo.Repository, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{repo: repo, logger: logger}
}

// Record writes one event. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, userID, action, ip, userAgent, metadata string) {
	if l.repo == nil {
		return
	}
	e := &domain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		IP:        ip,
		UserAgent: userAgent,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, e); err != nil {
		l.logger.Error("audit: failed to record event", "action", action, "error", err)
	}
}

// Nop is a Recorder that drops all events. Used in tests.
type Nop struct{}

// Record discards the event.
func (Nop) Record(ctx context.Context, userID, action, ip, userAgent, metadata string) {}
