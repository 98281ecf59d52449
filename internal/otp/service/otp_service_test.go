package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"volunteens/auth-service/internal/otp/domain"
)

type memOTPRepo struct {
	mu sync.Mutex
	m  map[string]*domain.OTP
}

func newMemOTPRepo() *memOTPRepo {
	return &memOTPRepo{m: make(map[string]*domain.OTP)}
}

func (r *memOTPRepo) Create(ctx context.Context, o *domain.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o2 := *o
	r.m[o.ID] = &o2
	return nil
}

func (r *memOTPRepo) GetByToken(ctx context.Context, token string, typ domain.Type) (*domain.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.m {
		if o.Token == token && o.Type == typ {
			o2 := *o
			return &o2, nil
		}
	}
	return nil, nil
}

func (r *memOTPRepo) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok || o.Used {
		return false, nil
	}
	o.Used = true
	o.UsedAt = &at
	return true, nil
}

func (r *memOTPRepo) InvalidateUnused(ctx context.Context, userID string, typ domain.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.m {
		if o.UserID == userID && o.Type == typ && !o.Used {
			o.Used = true
		}
	}
	return nil
}

func TestIssueDerivesExpiryFromType(t *testing.T) {
	repo := newMemOTPRepo()
	svc := NewService(repo)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	verification, err := svc.Issue(context.Background(), "user-1", domain.TypeEmailVerification)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !verification.ExpiresAt.Equal(base.Add(24 * time.Hour)) {
		t.Fatalf("verification expiry = %v, want base+24h", verification.ExpiresAt)
	}

	reset, err := svc.Issue(context.Background(), "user-1", domain.TypePasswordReset)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !reset.ExpiresAt.Equal(base.Add(15 * time.Minute)) {
		t.Fatalf("reset expiry = %v, want base+15m", reset.ExpiresAt)
	}
}

func TestIssueRejectsUnknownType(t *testing.T) {
	svc := NewService(newMemOTPRepo())
	if _, err := svc.Issue(context.Background(), "user-1", "smoke_signal"); err == nil {
		t.Fatal("unknown type accepted")
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	svc := NewService(newMemOTPRepo())
	issued, err := svc.Issue(context.Background(), "user-1", domain.TypeEmailVerification)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	consumed, err := svc.Consume(context.Background(), issued.Token, domain.TypeEmailVerification)
	if err != nil {
		t.Fatalf("first Consume: %v", err)
	}
	if consumed.UserID != "user-1" || !consumed.Used || consumed.UsedAt == nil {
		t.Fatalf("consumed code not marked used: %+v", consumed)
	}

	if _, err := svc.Consume(context.Background(), issued.Token, domain.TypeEmailVerification); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("second Consume: want ErrOTPInvalid, got %v", err)
	}
}

func TestConsumeRejectsWrongTypeAndUnknown(t *testing.T) {
	svc := NewService(newMemOTPRepo())
	issued, err := svc.Issue(context.Background(), "user-1", domain.TypeEmailVerification)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Consume(context.Background(), issued.Token, domain.TypePasswordReset); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("wrong type: want ErrOTPInvalid, got %v", err)
	}
	if _, err := svc.Consume(context.Background(), "no-such-token", domain.TypeEmailVerification); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("unknown token: want ErrOTPInvalid, got %v", err)
	}
}

func TestConsumeRejectsExpired(t *testing.T) {
	repo := newMemOTPRepo()
	svc := NewService(repo)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	issued, err := svc.Issue(context.Background(), "user-1", domain.TypePasswordReset)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// 15m TTL: one minute past expiry must reject even though unused.
	svc.now = func() time.Time { return base.Add(16 * time.Minute) }
	if _, err := svc.Consume(context.Background(), issued.Token, domain.TypePasswordReset); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expired code: want ErrOTPInvalid, got %v", err)
	}
}

func TestIssueResetInvalidatesPreviousResetCodes(t *testing.T) {
	svc := NewService(newMemOTPRepo())
	first, err := svc.Issue(context.Background(), "user-1", domain.TypePasswordReset)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := svc.Issue(context.Background(), "user-1", domain.TypePasswordReset)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Consume(context.Background(), first.Token, domain.TypePasswordReset); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("stale reset code: want ErrOTPInvalid, got %v", err)
	}
	if _, err := svc.Consume(context.Background(), second.Token, domain.TypePasswordReset); err != nil {
		t.Fatalf("fresh reset code rejected: %v", err)
	}
}

func TestIssueVerificationDoesNotInvalidatePrevious(t *testing.T) {
	svc := NewService(newMemOTPRepo())
	first, err := svc.Issue(context.Background(), "user-1", domain.TypeEmailVerification)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Issue(context.Background(), "user-1", domain.TypeEmailVerification); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Consume(context.Background(), first.Token, domain.TypeEmailVerification); err != nil {
		t.Fatalf("older verification code rejected: %v", err)
	}
}
