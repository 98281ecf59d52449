package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	os.Setenv("JWT_ACCESS_SECRET", "access-secret")
	os.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":5001" {
		t.Errorf("HTTPAddr = %q, want :5001", cfg.HTTPAddr)
	}
	if cfg.JWTIssuer != "volunteens-auth" {
		t.Errorf("JWTIssuer = %q, want volunteens-auth", cfg.JWTIssuer)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", got)
	}
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", got)
	}
	if got := cfg.VerifyLookupTimeout(); got != 2*time.Second {
		t.Errorf("VerifyLookupTimeout = %v, want 2s", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	os.Setenv("HTTP_ADDR", ":9000")
	os.Setenv("JWT_ACCESS_TTL", "5m")
	os.Setenv("JWT_REFRESH_TTL", "24h")
	os.Setenv("BCRYPT_COST", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q, want :9000", cfg.HTTPAddr)
	}
	if got := cfg.AccessTTL(); got != 5*time.Minute {
		t.Errorf("AccessTTL = %v, want 5m", got)
	}
	if got := cfg.RefreshTTL(); got != 24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 24h", got)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	os.Clearenv()
	if _, err := Load(); err == nil {
		t.Fatal("Load without secrets should fail")
	}

	setRequired(t)
	os.Setenv("JWT_REFRESH_SECRET", "access-secret")
	if _, err := Load(); err == nil {
		t.Fatal("Load with identical secrets should fail")
	}
}

func TestLoad_RejectsBadBcryptCost(t *testing.T) {
	setRequired(t)
	os.Setenv("BCRYPT_COST", "50")
	if _, err := Load(); err == nil {
		t.Fatal("Load with BCRYPT_COST=50 should fail")
	}
}

func TestTTLFallbacks(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "garbage", JWTRefreshTTL: "-5m", VerifyTimeout: ""}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL fallback = %v, want 15m", got)
	}
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL fallback = %v, want 168h", got)
	}
	if got := cfg.VerifyLookupTimeout(); got != 2*time.Second {
		t.Errorf("VerifyLookupTimeout fallback = %v, want 2s", got)
	}
}
