package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"volunteens/auth-service/internal/metrics"
	"volunteens/auth-service/internal/security"
	sessiondomain "volunteens/auth-service/internal/session/domain"
	userdomain "volunteens/auth-service/internal/user/domain"
)

type failingSessionRepo struct {
	memSessionRepo
	err error
}

func (r *failingSessionRepo) GetActive(ctx context.Context, id string) (*sessiondomain.Session, error) {
	return nil, r.err
}

func newVerifyFixture(t *testing.T) (*VerifyService, *memUserRepo, *memSessionRepo, *security.TokenProvider) {
	t.Helper()
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	tokens := security.NewTokenProvider(
		[]byte("access-secret"), []byte("refresh-secret"),
		"auth-service", 15*time.Minute, 7*24*time.Hour)
	svc := NewVerifyService(users, sessions, tokens, metrics.NewNop(), slog.New(slog.DiscardHandler), time.Second)
	return svc, users, sessions, tokens
}

func seedVerifiedUser(t *testing.T, users *memUserRepo, sessions *memSessionRepo, role userdomain.Role, grants []string) (*userdomain.User, *sessiondomain.Session) {
	t.Helper()
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           "user-1",
		Email:        "mod@example.com",
		PasswordHash: "x",
		Role:         role,
		Status:       userdomain.StatusActive,
		FirstName:    "Max",
		LastName:     "Weber",
		Permissions:  grants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	s := &sessiondomain.Session{
		ID:        "sess-1",
		UserID:    u.ID,
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}
	if err := sessions.Create(context.Background(), s); err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return u, s
}

func TestVerifyReturnsEffectivePermissions(t *testing.T) {
	svc, users, sessions, tokens := newVerifyFixture(t)
	u, s := seedVerifiedUser(t, users, sessions, userdomain.RoleModerator, []string{userdomain.PermSystemLogs})

	token, _, err := tokens.IssueAccess(u.ID, u.Email, s.ID)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	got, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UserID != u.ID || got.Email != u.Email || got.Role != string(userdomain.RoleModerator) || got.SessionID != s.ID {
		t.Fatalf("identity mismatch: %+v", got)
	}
	want := u.EffectivePermissions()
	if !reflect.DeepEqual(got.Permissions, want) {
		t.Fatalf("permissions = %v, want %v", got.Permissions, want)
	}
}

func TestVerifyStatelessFailures(t *testing.T) {
	svc, _, _, _ := newVerifyFixture(t)

	if _, err := svc.Verify(context.Background(), "garbage"); !errors.Is(err, security.ErrTokenMalformed) {
		t.Fatalf("garbage: want ErrTokenMalformed, got %v", err)
	}

	expired := security.NewTokenProvider(
		[]byte("access-secret"), []byte("refresh-secret"),
		"auth-service", -time.Minute, 7*24*time.Hour)
	token, _, err := expired.IssueAccess("user-1", "a@b.test", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, security.ErrTokenExpired) {
		t.Fatalf("expired: want ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsRevokedSessionAndInactiveUser(t *testing.T) {
	svc, users, sessions, tokens := newVerifyFixture(t)
	u, s := seedVerifiedUser(t, users, sessions, userdomain.RoleStudent, nil)
	token, _, err := tokens.IssueAccess(u.ID, u.Email, s.ID)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if err := sessions.Revoke(context.Background(), s.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("revoked session: want ErrSessionInvalid, got %v", err)
	}

	// Re-create the session but lock the account.
	if err := sessions.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := users.UpdateStatus(context.Background(), u.ID, userdomain.StatusLocked); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("locked user: want ErrSessionInvalid, got %v", err)
	}
}

func TestVerifyStoreFailureIsUnavailable(t *testing.T) {
	users := newMemUserRepo()
	tokens := security.NewTokenProvider(
		[]byte("access-secret"), []byte("refresh-secret"),
		"auth-service", 15*time.Minute, 7*24*time.Hour)
	failing := &failingSessionRepo{err: errors.New("connection refused")}
	svc := NewVerifyService(users, failing, tokens, metrics.NewNop(), slog.New(slog.DiscardHandler), time.Second)

	token, _, err := tokens.IssueAccess("user-1", "a@b.test", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("store failure: want ErrUnavailable, got %v", err)
	}
}
