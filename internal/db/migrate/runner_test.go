package migrate

import "testing"

func TestRun_EmptyDSN(t *testing.T) {
	if err := Run("", "up"); err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
}

func TestRun_BadDirection(t *testing.T) {
	err := Run("postgres://localhost/auth", "sideways")
	if err == nil {
		t.Fatal("Run with bad direction should return error")
	}
}
