package repository

import (
	"context"
	"errors"
	"time"

	"auth-service/internal/user/domain"
)

var (
	// ErrDuplicateEmail is returned by Create when the email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNotFound is returned by updates that matched no user.
	ErrNotFound = errors.New("user not found")
)

// Repository defines persistence for users.
// Lookups return (nil, nil) when no row matches; errors are for storage failures only.
type Repository interface {
	// GetActiveByEmail returns the active user with the given email (case-insensitive).
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts u. Returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, u *domain.User) error
	// UpdateSessionFingerprint stores the current session fingerprint and last access time.
	UpdateSessionFingerprint(ctx context.Context, userID, fingerprintHash string, at time.Time) error
	// ClearSessionFingerprint removes the stored fingerprint so no session verifies.
	ClearSessionFingerprint(ctx context.Context, userID string, at time.Time) error
}
