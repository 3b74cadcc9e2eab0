package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"sitepulse/internal/errors"
	"sitepulse/models"
)

// Migrate creates the state-store schema and records its version. A database
// carrying a newer schema version than this binary understands is refused
// rather than silently reinterpreted.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if err := createSchemaVersionTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}
	version, err := currentSchemaVersion(ctx, db)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	if version > models.SchemaVersion {
		return errors.ConfigInvalid("database schema is newer than this binary")
	}

	if err := createSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create visitor_sessions table")
	}
	if err := createReportsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create import_reports table")
	}
	if err := recordSchemaVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}

func createSchemaVersionTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func currentSchemaVersion(ctx context.Context, db *sqlx.DB) (int, error) {
	var version int
	err := db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

func createSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS visitor_sessions (
			id            TEXT PRIMARY KEY,
			version       INTEGER NOT NULL,
			access_token  TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			user_id       BIGINT NOT NULL,
			is_sudo       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at    TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_visitor_sessions_expires_at ON visitor_sessions (expires_at)
	`)
	return err
}

func createReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS import_reports (
			session_id TEXT PRIMARY KEY REFERENCES visitor_sessions (id) ON DELETE CASCADE,
			version    INTEGER NOT NULL,
			prediction TEXT NOT NULL,
			csv_data   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_import_reports_expires_at ON import_reports (expires_at)
	`)
	return err
}

func recordSchemaVersion(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schema_version (version) VALUES ($1)
		ON CONFLICT (version) DO NOTHING
	`, models.SchemaVersion)
	return err
}
