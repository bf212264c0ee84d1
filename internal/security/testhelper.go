package security

import "time"

// Fixed secrets for unit tests only. Do not use in production.
var (
	TestAccessSecret  = []byte("test-access-secret-0123456789abcdef")
	TestRefreshSecret = []byte("test-refresh-secret-fedcba9876543210")
)

// TestTokenTTLs are the access and refresh lifetimes paired with the test secrets.
const (
	TestAccessTTL  = 15 * time.Minute
	TestRefreshTTL = 24 * time.Hour
)

// NewTestTokenSigner returns a TokenSigner with issuer "test-issuer".
// For unit tests only.
func NewTestTokenSigner() *TokenSigner {
	return NewTokenSigner("test-issuer")
}
