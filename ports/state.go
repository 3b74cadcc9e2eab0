package ports

import (
	"context"
	"time"

	"sitepulse/models"
)

// StateStore is the single typed store for per-visitor state: the credential
// session and the import-report reload cache. It replaces the two unrelated
// browser local-storage uses with one schema-versioned abstraction.
//
// Get methods return (nil, nil) when no record exists; records written under
// a different schema version are treated as absent.
type StateStore interface {
	// PutSession stores a session under its ID with the given lifetime.
	PutSession(ctx context.Context, session *models.Session, ttl time.Duration) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// DeleteSession removes a session and its cached report. After deletion
	// every authenticated route for that visitor must fail closed.
	DeleteSession(ctx context.Context, sessionID string) error

	// PutReport caches the import report for a session.
	PutReport(ctx context.Context, report *models.CachedReport, ttl time.Duration) error

	// GetReport retrieves the cached import report for a session.
	GetReport(ctx context.Context, sessionID string) (*models.CachedReport, error)

	// DeleteReport drops the cached import report for a session.
	DeleteReport(ctx context.Context, sessionID string) error

	// Sweep evicts expired sessions and orphaned reports, returning the
	// number of records removed. Drivers with native TTLs may return 0.
	Sweep(ctx context.Context, now time.Time) (int, error)

	// Close releases the underlying resources.
	Close() error
}
