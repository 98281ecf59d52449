package security

import "testing"

func TestHasherHashAndCompare(t *testing.T) {
	h := NewHasher(4) // min cost keeps the test fast

	hash, err := h.Hash([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if err := h.Compare(hash, []byte("correct horse battery staple")); err != nil {
		t.Fatalf("Compare with correct password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong password")); err == nil {
		t.Fatal("Compare accepted wrong password")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{0, 10},  // bcrypt.DefaultCost
		{-3, 10},
		{2, 4},   // below bcrypt.MinCost
		{40, 31}, // above bcrypt.MaxCost
		{12, 12},
	} {
		if got := NewHasher(tc.in).Cost; got != tc.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tc.in, got, tc.want)
		}
	}
}
