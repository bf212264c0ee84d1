package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid is returned when a token is malformed, carries a bad signature,
	// or fails claim validation other than expiry.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a correctly signed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenKind distinguishes access tokens from refresh tokens inside the claims.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Payload is the data carried by access and refresh tokens.
type Payload struct {
	UserID    string
	SessionID string
}

// SessionClaims holds JWT claims for access and refresh tokens.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string    `json:"session_id"`
	Kind      TokenKind `json:"typ"`
}

// TokenSigner issues and verifies HS256 JWTs. The secret and TTL are supplied per
// call so access and refresh tokens can use distinct keys and lifetimes.
type TokenSigner struct {
	issuer string
	now    func() time.Time
}

// NewTokenSigner returns a TokenSigner that stamps and requires the given issuer.
func NewTokenSigner(issuer string) *TokenSigner {
	return NewTokenSignerWithClock(issuer, time.Now)
}

// NewTokenSignerWithClock is NewTokenSigner with an explicit clock, used for both
// issuing and validating.
func NewTokenSignerWithClock(issuer string, now func() time.Time) *TokenSigner {
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{issuer: issuer, now: now}
}

// Issuer returns the iss claim this signer stamps and requires.
func (s *TokenSigner) Issuer() string {
	return s.issuer
}

// Issue signs a token of the given kind carrying p that expires ttl from now.
// Returns the token string and its expiration time as signed into the exp claim,
// which is truncated to whole seconds.
func (s *TokenSigner) Issue(kind TokenKind, p Payload, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 || ttl <= 0 || p.UserID == "" || p.SessionID == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := s.now().UTC()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   p.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SessionID: p.SessionID,
		Kind:      kind,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify parses tokenString, checks signature, expiry, issuer and kind, and returns
// the payload. Returns ErrTokenExpired for an expired but otherwise valid token and
// ErrTokenInvalid for everything else.
func (s *TokenSigner) Verify(kind TokenKind, tokenString string, secret []byte) (Payload, error) {
	if tokenString == "" || len(secret) == 0 {
		return Payload{}, ErrTokenInvalid
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		// Signature is checked before claims, so an expired token here was signed with secret.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Payload{}, ErrTokenExpired
		}
		return Payload{}, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return Payload{}, ErrTokenInvalid
	}
	if claims.Kind != kind || claims.Subject == "" || claims.SessionID == "" {
		return Payload{}, ErrTokenInvalid
	}
	return Payload{UserID: claims.Subject, SessionID: claims.SessionID}, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
