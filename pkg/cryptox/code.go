package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// GenerateCode mints a new random join code. The code is a canonical UUID
// string (122 bits of entropy), intended for one out-of-band delivery to
// the invitee and never persisted.
func GenerateCode() string {
	return uuid.NewString()
}

// FingerprintCode returns the deterministic SHA-256 fingerprint of a
// join code, base64url encoded without padding. The fingerprint is what
// gets stored and looked up; possession of it does not reveal the code.
//
// Codes are trimmed before hashing so copy-paste whitespace does not
// change the fingerprint.
func FingerprintCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
