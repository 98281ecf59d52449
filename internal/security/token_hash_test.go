package security

import "testing"

func TestHashTokenIsDeterministicHex(t *testing.T) {
	h1 := HashToken("some-refresh-token")
	h2 := HashToken("some-refresh-token")
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
	if h1 == HashToken("some-other-token") {
		t.Fatal("distinct inputs produced the same hash")
	}
}

func TestTokenHashEqual(t *testing.T) {
	stored := HashToken("the-token")
	if !TokenHashEqual("the-token", stored) {
		t.Fatal("matching token rejected")
	}
	if TokenHashEqual("not-the-token", stored) {
		t.Fatal("non-matching token accepted")
	}
	if TokenHashEqual("", stored) {
		t.Fatal("empty token accepted")
	}
}
