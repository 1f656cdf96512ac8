package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// NormalizeQuery canonicalizes a search query: trims surrounding
// whitespace, lowercases, and collapses internal whitespace runs to a
// single space. Semantically identical queries must normalize to the
// same string so they collide on the same cache key.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Fingerprint returns the first prefixLen characters of SHA256 over a
// canonical joining of the parts. Parts are joined with an ASCII unit
// separator so "ab"+"c" and "a"+"bc" never collide.
func Fingerprint(prefixLen int, parts ...string) string {
	full := SHA256Hex(strings.Join(parts, "\x1f"))
	if prefixLen <= 0 || prefixLen > len(full) {
		return full
	}
	return full[:prefixLen]
}
