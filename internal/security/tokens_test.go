package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	testAccessSecret  = []byte("test-access-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

func TestTokenSigner_IssueAndVerify(t *testing.T) {
	s := NewTokenSigner("test-issuer")
	p := Payload{UserID: "u1", SessionID: "s1"}

	tok, exp, err := s.Issue(TokenKindAccess, p, testAccessSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok == "" {
		t.Fatal("token empty")
	}
	if !exp.After(time.Now()) {
		t.Fatal("expires at should be in the future")
	}

	got, err := s.Verify(TokenKindAccess, tok, testAccessSecret)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != p {
		t.Errorf("Verify payload = %+v, want %+v", got, p)
	}
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	s := NewTokenSigner("test-issuer")
	tok, _, err := s.Issue(TokenKindAccess, Payload{UserID: "u1", SessionID: "s1"}, testAccessSecret, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := s.Verify(TokenKindAccess, tok, []byte("some-other-secret")); err != ErrTokenInvalid {
		t.Errorf("Verify with wrong secret: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenSigner_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := NewTokenSignerWithClock("test-issuer", func() time.Time { return past })
	tok, _, err := issuer.Issue(TokenKindAccess, Payload{UserID: "u1", SessionID: "s1"}, testAccessSecret, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	s := NewTokenSigner("test-issuer")
	if _, err := s.Verify(TokenKindAccess, tok, testAccessSecret); err != ErrTokenExpired {
		t.Errorf("Verify expired: want ErrTokenExpired, got %v", err)
	}
}

func TestTokenSigner_ExpiredWithWrongSecretIsInvalid(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := NewTokenSignerWithClock("test-issuer", func() time.Time { return past })
	tok, _, _ := issuer.Issue(TokenKindAccess, Payload{UserID: "u1", SessionID: "s1"}, testAccessSecret, time.Minute)

	s := NewTokenSigner("test-issuer")
	if _, err := s.Verify(TokenKindAccess, tok, testRefreshSecret); err != ErrTokenInvalid {
		t.Errorf("want ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestTokenSigner_KindMismatch(t *testing.T) {
	s := NewTokenSigner("test-issuer")
	refresh, _, err := s.Issue(TokenKindRefresh, Payload{UserID: "u1", SessionID: "s1"}, testAccessSecret, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	// Same secret on purpose: the typ claim alone must stop a refresh token acting as an access token.
	if _, err := s.Verify(TokenKindAccess, refresh, testAccessSecret); err != ErrTokenInvalid {
		t.Errorf("refresh token verified as access: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenSigner_WrongIssuer(t *testing.T) {
	tok, _, _ := NewTokenSigner("someone-else").Issue(TokenKindAccess, Payload{UserID: "u1", SessionID: "s1"}, testAccessSecret, time.Minute)
	if _, err := NewTokenSigner("test-issuer").Verify(TokenKindAccess, tok, testAccessSecret); err != ErrTokenInvalid {
		t.Errorf("want ErrTokenInvalid for wrong issuer, got %v", err)
	}
}

func TestTokenSigner_RejectsOtherAlgorithms(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		SessionID: "s1",
		Kind:      TokenKindAccess,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testAccessSecret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := NewTokenSigner("test-issuer").Verify(TokenKindAccess, tok, testAccessSecret); err != ErrTokenInvalid {
		t.Errorf("HS512 token: want ErrTokenInvalid, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString none: %v", err)
	}
	if _, err := NewTokenSigner("test-issuer").Verify(TokenKindAccess, none, testAccessSecret); err != ErrTokenInvalid {
		t.Errorf("alg=none token: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenSigner_MissingExpiry(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "test-issuer"},
		SessionID:        "s1",
		Kind:             TokenKindAccess,
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testAccessSecret)
	if _, err := NewTokenSigner("test-issuer").Verify(TokenKindAccess, tok, testAccessSecret); err != ErrTokenInvalid {
		t.Errorf("token without exp: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenSigner_Tampered(t *testing.T) {
	s := NewTokenSigner("test-issuer")
	tok, _, _ := s.Issue(TokenKindAccess, Payload{UserID: "u1", SessionID: "s1"}, testAccessSecret, time.Minute)
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts", len(parts))
	}
	other, _, _ := s.Issue(TokenKindAccess, Payload{UserID: "u2", SessionID: "s2"}, testAccessSecret, time.Minute)
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]
	if _, err := s.Verify(TokenKindAccess, forged, testAccessSecret); err != ErrTokenInvalid {
		t.Errorf("tampered token: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenSigner_InvalidInputs(t *testing.T) {
	s := NewTokenSigner("test-issuer")
	testCases := []struct {
		name   string
		p      Payload
		secret []byte
		ttl    time.Duration
	}{
		{"empty secret", Payload{UserID: "u1", SessionID: "s1"}, nil, time.Minute},
		{"zero ttl", Payload{UserID: "u1", SessionID: "s1"}, testAccessSecret, 0},
		{"missing user", Payload{SessionID: "s1"}, testAccessSecret, time.Minute},
		{"missing session", Payload{UserID: "u1"}, testAccessSecret, time.Minute},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := s.Issue(TokenKindAccess, tc.p, tc.secret, tc.ttl); err != ErrTokenInvalid {
				t.Errorf("Issue: want ErrTokenInvalid, got %v", err)
			}
		})
	}

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := s.Verify(TokenKindAccess, tok, testAccessSecret); err != ErrTokenInvalid {
			t.Errorf("Verify(%q): want ErrTokenInvalid, got %v", tok, err)
		}
	}
}

func TestTokenSigner_ExpiryMatchesSignedClaim(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 900_000_000, time.UTC)
	s := NewTokenSignerWithClock("test-issuer", func() time.Time { return issuedAt })
	p := Payload{UserID: "u1", SessionID: "s1"}

	tok, exp, err := s.Issue(TokenKindAccess, p, testAccessSecret, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	want := time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC)
	if !exp.Equal(want) {
		t.Fatalf("expires at = %v, want %v (whole seconds, as signed)", exp, want)
	}

	at := func(now time.Time) *TokenSigner {
		return NewTokenSignerWithClock("test-issuer", func() time.Time { return now })
	}
	if _, err := at(exp.Add(-time.Millisecond)).Verify(TokenKindAccess, tok, testAccessSecret); err != nil {
		t.Fatalf("Verify just before the returned expiry: %v", err)
	}
	if _, err := at(exp).Verify(TokenKindAccess, tok, testAccessSecret); err != ErrTokenExpired {
		t.Fatalf("Verify at the returned expiry: want ErrTokenExpired, got %v", err)
	}
}

func TestTokenSigner_Issuer(t *testing.T) {
	if got := NewTokenSigner("test-issuer").Issuer(); got != "test-issuer" {
		t.Errorf("Issuer() = %q, want test-issuer", got)
	}
}
