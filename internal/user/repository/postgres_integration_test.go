//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"auth-service/internal/db"
	"auth-service/internal/db/migrate"
	"auth-service/internal/user/domain"
	"auth-service/internal/user/repository"
)

// setupPostgres starts a PostgreSQL container, applies migrations and returns a repository.
func setupPostgres(t *testing.T) *repository.PostgresRepository {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("auth_test"),
		postgres.WithUsername("auth"),
		postgres.WithPassword("auth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrate.Run(dsn, "up"))

	pool, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return repository.NewPostgresRepository(pool)
}

func TestPostgresRepository_Integration(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	u := &domain.User{
		ID: "11111111-1111-4111-8111-111111111111", Username: "a", Email: "a@x.com",
		PasswordHash: "hash", Roles: []string{"admin", "user"}, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, u))

	dup := *u
	dup.ID = "22222222-2222-4222-8222-222222222222"
	dup.Email = "A@X.com"
	assert.ErrorIs(t, repo.Create(ctx, &dup), repository.ErrDuplicateEmail)

	got, err := repo.GetActiveByEmail(ctx, "A@x.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []string{"admin", "user"}, got.Roles)
	assert.Nil(t, got.SessionFingerprintHash)
	assert.Nil(t, got.LastAccess)

	missing, err := repo.GetActiveByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	at := now.Add(time.Minute)
	require.NoError(t, repo.UpdateSessionFingerprint(ctx, u.ID, "fp-1", at))
	require.NoError(t, repo.UpdateSessionFingerprint(ctx, u.ID, "fp-2", at.Add(time.Second)))

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SessionFingerprintHash)
	assert.Equal(t, "fp-2", *got.SessionFingerprintHash)
	require.NotNil(t, got.LastAccess)
	assert.True(t, got.LastAccess.Equal(at.Add(time.Second)))

	require.NoError(t, repo.ClearSessionFingerprint(ctx, u.ID, at.Add(2*time.Second)))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SessionFingerprintHash)

	assert.ErrorIs(t, repo.UpdateSessionFingerprint(ctx, "33333333-3333-4333-8333-333333333333", "fp", at), repository.ErrNotFound)

	none, err := repo.GetByID(ctx, "33333333-3333-4333-8333-333333333333")
	require.NoError(t, err)
	assert.Nil(t, none)
}
