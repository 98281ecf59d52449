package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken returns a SHA-256 hash of the given secret, hex-encoded. Used for
// refresh tokens and fingerprints: only the hash is persisted, never the raw
// value.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TokenHashEqual compares the hash of a presented secret against a stored hash
// in constant time.
func TokenHashEqual(presented, storedHash string) bool {
	presentedHash := HashToken(presented)
	return subtle.ConstantTimeCompare([]byte(presentedHash), []byte(storedHash)) == 1
}
