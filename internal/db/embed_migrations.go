package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
// Used by the migrate runner (cmd/migrate and the server's MIGRATE_ON_START) to apply migrations.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
