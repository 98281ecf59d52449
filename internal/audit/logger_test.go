package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"volunteens/auth-service/internal/audit/domain"
)

type memEventRepo struct {
	mu     sync.Mutex
	events []*domain.Event
	err    error
}

func (r *memEventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	e2 := *e
	r.events = append(r.events, &e2)
	return nil
}

func (r *memEventRepo) ListRecent(ctx context.Context, limit, offset int32) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, nil
}

func (r *memEventRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Event
	for _, e := range r.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecordPersistsEvent(t *testing.T) {
	repo := &memEventRepo{}
	l := NewLogger(repo, slog.New(slog.DiscardHandler))

	l.Record(context.Background(), "user-1", domain.ActionTokenReuse, "10.0.0.1", "ua", "session s1")

	events, _ := repo.ListRecent(context.Background(), 10, 0)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("event missing ID or timestamp: %+v", e)
	}
	if e.UserID != "user-1" || e.Action != domain.ActionTokenReuse || e.IP != "10.0.0.1" {
		t.Fatalf("event fields wrong: %+v", e)
	}
}

func TestRecordIsBestEffort(t *testing.T) {
	repo := &memEventRepo{err: errors.New("db down")}
	l := NewLogger(repo, slog.New(slog.DiscardHandler))

	// Must not panic or propagate the failure.
	l.Record(context.Background(), "user-1", domain.ActionLoginFailure, "", "", "")
}

func TestNopRecorder(t *testing.T) {
	Nop{}.Record(context.Background(), "user-1", domain.ActionLogout, "", "", "")
}
