package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key derives the auction key from a normalized canonical URL: a SHA-256
// hex digest. It is pure and deterministic, so the same listing URL maps to
// the same key in every run, on every host, with no store round-trip.
func Key(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}
