package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns a stable hash of normalized request text. It is used
// to correlate memories of similar requests and to derive deterministic
// decomposition identifiers.
func Fingerprint(request string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(request)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
