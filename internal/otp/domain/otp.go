package domain

import (
	"fmt"
	"time"
)

// Type is the purpose an OTP is scoped to. A code issued for one purpose is
// never accepted for another.
type Type string

const (
	TypeEmailVerification Type = "email_verification"
	TypePasswordReset     Type = "password_reset"
)

// TTLs per type: long for verification to tolerate slow email delivery, short
// for reset to bound exposure of the link.
var ttlByType = map[Type]time.Duration{
	TypeEmailVerification: 24 * time.Hour,
	TypePasswordReset:     15 * time.Minute,
}

// TTL returns the fixed time-to-live for the given type.
func TTL(t Type) (time.Duration, error) {
	d, ok := ttlByType[t]
	if !ok {
		return 0, fmt.Errorf("unknown otp type %q", t)
	}
	return d, nil
}

// OTP is a single-use, purpose-scoped, time-boxed code. ExpiresAt is derived
// from the type once at creation and never recomputed.
type OTP struct {
	ID        string
	UserID    string
	Token     string
	Type      Type
	Used      bool
	UsedAt    *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Consumable reports whether the code can still be consumed at t. A used or
// expired code must be rejected regardless of the token value.
func (o *OTP) Consumable(t time.Time) bool {
	return !o.Used && !t.After(o.ExpiresAt)
}
