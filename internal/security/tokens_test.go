package security

import (
	"errors"
	"testing"
	"time"
)

func newTestProvider(accessTTL, refreshTTL time.Duration) *TokenProvider {
	return NewTokenProvider([]byte("access-secret"), []byte("refresh-secret"), "volunteens-auth", accessTTL, refreshTTL)
}

func TestIssueAndValidateAccess(t *testing.T) {
	p := newTestProvider(15*time.Minute, 7*24*time.Hour)

	token, expiresAt, err := p.IssueAccess("user-1", "a@example.com", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if until := time.Until(expiresAt); until < 14*time.Minute || until > 16*time.Minute {
		t.Fatalf("access expiry %v not ~15m away", expiresAt)
	}

	claims, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" || claims.SessionID != "sess-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssueAndValidateRefresh(t *testing.T) {
	p := newTestProvider(15*time.Minute, 7*24*time.Hour)

	token, _, err := p.IssueRefresh("user-1", "sess-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err := p.ValidateRefresh(token)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if claims.Subject != "user-1" || claims.SessionID != "sess-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssuedTokensAreUnique(t *testing.T) {
	p := newTestProvider(15*time.Minute, 7*24*time.Hour)

	// Issued back to back within the same second, the tokens must still
	// differ, or rotating a refresh token would swap its hash for itself
	// and replay of the old token would go undetected.
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		refresh, _, err := p.IssueRefresh("user-1", "sess-1")
		if err != nil {
			t.Fatalf("IssueRefresh: %v", err)
		}
		if seen[refresh] {
			t.Fatal("IssueRefresh returned a duplicate token")
		}
		seen[refresh] = true

		access, _, err := p.IssueAccess("user-1", "a@example.com", "sess-1")
		if err != nil {
			t.Fatalf("IssueAccess: %v", err)
		}
		if seen[access] {
			t.Fatal("IssueAccess returned a duplicate token")
		}
		seen[access] = true
	}

	refresh, _, err := p.IssueRefresh("user-1", "sess-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err := p.ValidateRefresh(refresh)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("refresh claims carry no jti")
	}
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	p := newTestProvider(15*time.Minute, 7*24*time.Hour)

	access, _, err := p.IssueAccess("user-1", "a@example.com", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateRefresh(access); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("access token accepted as refresh, err=%v", err)
	}

	refresh, _, err := p.IssueRefresh("user-1", "sess-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := p.ValidateAccess(refresh); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("refresh token accepted as access, err=%v", err)
	}
}

func TestValidateExpiredIsDistinguished(t *testing.T) {
	p := newTestProvider(-1*time.Minute, -1*time.Minute)

	access, _, err := p.IssueAccess("user-1", "a@example.com", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(access); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}

	refresh, _, err := p.IssueRefresh("user-1", "sess-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := p.ValidateRefresh(refresh); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestValidateRejectsGarbageAndWrongIssuer(t *testing.T) {
	p := newTestProvider(15*time.Minute, 7*24*time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := p.ValidateAccess(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("ValidateAccess(%q): want ErrTokenMalformed, got %v", tok, err)
		}
	}

	other := NewTokenProvider([]byte("access-secret"), []byte("refresh-secret"), "someone-else", 15*time.Minute, time.Hour)
	token, _, err := other.IssueAccess("user-1", "a@example.com", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("wrong issuer: want ErrTokenMalformed, got %v", err)
	}
}

func TestValidateRejectsTamperedSignature(t *testing.T) {
	p := newTestProvider(15*time.Minute, 7*24*time.Hour)
	forged := NewTokenProvider([]byte("other-access"), []byte("other-refresh"), "volunteens-auth", 15*time.Minute, time.Hour)

	token, _, err := forged.IssueAccess("user-1", "a@example.com", "sess-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("want ErrTokenMalformed for wrong secret, got %v", err)
	}
}
