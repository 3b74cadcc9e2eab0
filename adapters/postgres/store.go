package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sitepulse/internal/errors"
	"sitepulse/models"
	"sitepulse/ports"
)

// Store is the Postgres-backed StateStore driver for deployments that want
// sessions to survive process restarts.
type Store struct {
	db *sqlx.DB
}

var _ ports.StateStore = (*Store)(nil)

// New connects to Postgres and runs the schema migration.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing connection; used by tests.
func NewFromDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// PutSession stores a session under its ID with the given lifetime.
func (s *Store) PutSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	copied := *session
	copied.Version = models.SchemaVersion
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	copied.ExpiresAt = time.Now().UTC().Add(ttl)

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO visitor_sessions (id, version, access_token, refresh_token, user_id, is_sudo, created_at, expires_at)
		VALUES (:id, :version, :access_token, :refresh_token, :user_id, :is_sudo, :created_at, :expires_at)
		ON CONFLICT (id) DO UPDATE SET
			version = EXCLUDED.version,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			user_id = EXCLUDED.user_id,
			is_sudo = EXCLUDED.is_sudo,
			expires_at = EXCLUDED.expires_at
	`, &copied)
	if err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := s.db.GetContext(ctx, &session, `
		SELECT id, version, access_token, refresh_token, user_id, is_sudo, created_at, expires_at
		FROM visitor_sessions
		WHERE id = $1 AND expires_at > NOW()
	`, sessionID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeStorageError, err)
	}
	if session.Version != models.SchemaVersion {
		return nil, nil
	}
	return &session, nil
}

// DeleteSession removes a session; the cached report goes with it via the
// foreign key.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM visitor_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// PutReport caches the import report for a session.
func (s *Store) PutReport(ctx context.Context, report *models.CachedReport, ttl time.Duration) error {
	copied := *report
	copied.Version = models.SchemaVersion
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	expiresAt := time.Now().UTC().Add(ttl)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_reports (session_id, version, prediction, csv_data, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			version = EXCLUDED.version,
			prediction = EXCLUDED.prediction,
			csv_data = EXCLUDED.csv_data,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`, copied.SessionID, copied.Version, copied.Prediction, copied.CSVData, copied.CreatedAt, expiresAt)
	if err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// GetReport retrieves the cached import report for a session.
func (s *Store) GetReport(ctx context.Context, sessionID string) (*models.CachedReport, error) {
	var report models.CachedReport
	err := s.db.GetContext(ctx, &report, `
		SELECT session_id, version, prediction, csv_data, created_at
		FROM import_reports
		WHERE session_id = $1 AND expires_at > NOW()
	`, sessionID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeStorageError, err)
	}
	if report.Version != models.SchemaVersion {
		return nil, nil
	}
	return &report, nil
}

// DeleteReport drops the cached import report for a session.
func (s *Store) DeleteReport(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM import_reports WHERE session_id = $1`, sessionID)
	if err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// Sweep deletes rows past their expiry.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	res, err := s.db.ExecContext(ctx, `DELETE FROM import_reports WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, errors.WithCode(errors.CodeStorageError, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += int(n)
	}
	res, err = s.db.ExecContext(ctx, `DELETE FROM visitor_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return removed, errors.WithCode(errors.CodeStorageError, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += int(n)
	}
	return removed, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
