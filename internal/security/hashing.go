package security

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var (
	// ErrEmptyPassword is returned by Hash when the plaintext is empty.
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong is returned by Hash when the plaintext exceeds 72 bytes.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost int

	// dummy is a bcrypt hash of the same cost that never matches; Verify runs
	// against it when no stored hash exists so both failure paths do the same work.
	// Built on first use so construction stays cheap at any cost.
	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31). Zero selects
// bcrypt.DefaultCost; out-of-range values are clamped.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a salted bcrypt hash of password suitable for storage.
// It returns ErrEmptyPassword for an empty password and ErrPasswordTooLong
// when password is longer than 72 bytes.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hashed. An empty hashed value (no such
// user) is tolerated and always yields false; so do malformed hashes and empty
// passwords. A compare runs on every path.
func (h *Hasher) Verify(password, hashed string) bool {
	if hashed == "" {
		if dummy := h.dummyHash(); dummy != nil {
			_ = bcrypt.CompareHashAndPassword(dummy, []byte(password))
		}
		return false
	}
	ok := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
	return ok && password != ""
}

func (h *Hasher) dummyHash() []byte {
	h.dummyOnce.Do(func() {
		dummy, err := bcrypt.GenerateFromPassword([]byte("\x00no-such-user\x00"), h.Cost)
		if err == nil {
			h.dummy = dummy
		}
	})
	return h.dummy
}
