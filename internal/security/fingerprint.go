package security

import (
	"crypto/rand"
	"encoding/hex"
)

// fingerprintBytes is the entropy of the per-login client secret (64 hex chars).
const fingerprintBytes = 32

// GenerateFingerprint returns a random per-login client secret. The raw value
// is handed to the client once; the ledger stores only HashToken(secret) and
// every refresh compares against that hash.
func GenerateFingerprint() (string, error) {
	b := make([]byte, fingerprintBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
