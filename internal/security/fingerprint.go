package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashSessionID returns the hex-encoded SHA-256 fingerprint of a session id.
// Only the fingerprint is stored on the user record, never the raw id.
func HashSessionID(sessionID string) string {
	h := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(h[:])
}

// SessionIDMatches reports, in constant time, whether sessionID hashes to storedHash.
// An empty sessionID or storedHash never matches.
func SessionIDMatches(sessionID, storedHash string) bool {
	if sessionID == "" || storedHash == "" {
		return false
	}
	provided := HashSessionID(sessionID)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(storedHash)) == 1
}
