package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"auth-service/internal/user/domain"
)

// DBTX is the subset of *pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, username, email, password_hash, roles, is_active,
	session_fingerprint_hash, last_access, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository returns a user repository that uses db for persistence.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetActiveByEmail returns the active user with the given email, or nil if not found.
func (r *PostgresRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1) AND is_active = TRUE`,
		email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("operation", "get active user by email").Wrap(err)
	}
	return u, nil
}

// GetByID returns the user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").
			With("operation", "get user by id").
			With("user_id", id).
			Wrap(err)
	}
	return u, nil
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, roles, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, roles, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateEmail
		}
		return oops.Code("USER_CREATE_FAILED").With("user_id", u.ID).Wrap(err)
	}
	return nil
}

// UpdateSessionFingerprint sets the session fingerprint and last access for userID.
// Returns ErrNotFound if no row was updated.
func (r *PostgresRepository) UpdateSessionFingerprint(ctx context.Context, userID, fingerprintHash string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET session_fingerprint_hash = $2, last_access = $3, updated_at = $3 WHERE id = $1`,
		userID, fingerprintHash, at)
	if err != nil {
		return oops.Code("USER_FINGERPRINT_UPDATE_FAILED").With("user_id", userID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearSessionFingerprint nulls the session fingerprint for userID.
// Returns ErrNotFound if no row was updated.
func (r *PostgresRepository) ClearSessionFingerprint(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET session_fingerprint_hash = NULL, updated_at = $2 WHERE id = $1`,
		userID, at)
	if err != nil {
		return oops.Code("USER_FINGERPRINT_CLEAR_FAILED").With("user_id", userID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Roles,
		&u.IsActive,
		&u.SessionFingerprintHash,
		&u.LastAccess,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}
	return &u, nil
}
