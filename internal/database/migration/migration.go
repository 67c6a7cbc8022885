package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_roles",
		SQL: `CREATE TABLE IF NOT EXISTS roles (
  id    SMALLINT PRIMARY KEY,
  title TEXT     NOT NULL UNIQUE
);`,
	},
	{
		Name: "seed_roles",
		SQL:  `INSERT INTO roles (id, title) VALUES (1, 'Regular'), (2, 'Admin') ON CONFLICT (id) DO NOTHING;`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         BIGSERIAL   PRIMARY KEY,
  username   TEXT        NOT NULL UNIQUE,
  email      TEXT        NOT NULL UNIQUE,
  firstname  TEXT        NOT NULL DEFAULT '',
  lastname   TEXT        NOT NULL DEFAULT '',
  password   TEXT        NOT NULL,
  role       SMALLINT    NOT NULL DEFAULT 1 REFERENCES roles (id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id           BIGSERIAL   PRIMARY KEY,
  title        TEXT        NOT NULL,
  owner        BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  access       TEXT        NOT NULL DEFAULT 'public' CHECK (access IN ('public', 'private')),
  content_type TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  storage_path TEXT        NOT NULL UNIQUE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_owner_access",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_access ON documents (owner, access);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
}

// EnsureMigrated creates the schema when the 'users' table is missing. Every step is idempotent,
// so a run interrupted halfway is completed by the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	const query = "SELECT to_regclass('public.users') IS NOT NULL AND to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// EnsureAdmin promotes the registered user with the given email to the admin role. It is a no-op
// when email is empty, the user does not exist yet, or the user is already an admin, so it can run
// on every start: register the account, set ADMIN_EMAIL, restart.
func EnsureAdmin(ctx context.Context, db *sql.DB, logger *zap.Logger, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	log := logger.With(zap.String("component", "database"))

	const query = "UPDATE users SET role = 2, updated_at = now() WHERE email = $1 AND role <> 2"
	res, err := db.ExecContext(ctx, query, email)
	if err != nil {
		log.Error("admin_bootstrap_failed", zap.Error(err))
		return fmt.Errorf("promote admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	if n == 0 {
		log.Info("admin_bootstrap_skip", zap.String("detail", "no regular user with that email"))
		return nil
	}
	log.Info("admin_bootstrap_promoted", zap.String("email", email))
	return nil
}
