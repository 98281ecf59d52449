package domain

import (
	"testing"
	"time"
)

func TestTTLTable(t *testing.T) {
	if d, err := TTL(TypeEmailVerification); err != nil || d != 24*time.Hour {
		t.Fatalf("email verification TTL = %v, %v; want 24h", d, err)
	}
	if d, err := TTL(TypePasswordReset); err != nil || d != 15*time.Minute {
		t.Fatalf("password reset TTL = %v, %v; want 15m", d, err)
	}
	if _, err := TTL("carrier_pigeon"); err == nil {
		t.Fatal("unknown type accepted")
	}
}

func TestConsumable(t *testing.T) {
	now := time.Now().UTC()
	o := OTP{ExpiresAt: now.Add(15 * time.Minute)}

	if !o.Consumable(now) {
		t.Fatal("fresh code not consumable")
	}
	if !o.Consumable(now.Add(15 * time.Minute)) {
		t.Fatal("code at exact expiry should still be consumable")
	}
	if o.Consumable(now.Add(16 * time.Minute)) {
		t.Fatal("code past expiry consumable")
	}

	o.Used = true
	if o.Consumable(now) {
		t.Fatal("used code consumable")
	}
}
