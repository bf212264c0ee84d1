package domain

import (
	"errors"
	"strings"
	"time"
)

// User is the persisted identity. PasswordHash and SessionFingerprintHash never
// leave the service; use Public for any outward representation.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	IsActive     bool
	// SessionFingerprintHash is the SHA-256 fingerprint of the current session id; nil when no session is live.
	SessionFingerprintHash *string
	LastAccess             *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// PublicUser is the outward projection of a User.
type PublicUser struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Public returns the projection of u without any hash fields.
func (u *User) Public() PublicUser {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    roles,
	}
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	u.Roles = NormalizeRoles(u.Roles)
	return nil
}

// NormalizeEmail trims surrounding space and lower-cases email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRoles trims each role, drops empty entries and duplicates, and keeps
// the order of first occurrence. The result is never nil.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
