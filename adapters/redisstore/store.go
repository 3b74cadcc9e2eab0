package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sitepulse/internal/errors"
	"sitepulse/models"
	"sitepulse/ports"
)

// Key layout. The schema version is part of the key so records written by an
// older deployment are simply never seen.
const (
	sessionKeyPrefix = "sp:v%d:session:"
	reportKeyPrefix  = "sp:v%d:report:"
)

// Store is the Redis-backed StateStore driver. TTLs are native, so Sweep is
// a no-op.
type Store struct {
	client *redis.Client
}

var _ ports.StateStore = (*Store)(nil)

// New creates a Redis store and verifies connectivity.
func New(ctx context.Context, addr string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	return &Store{client: client}, nil
}

// NewFromClient wraps an existing client; used by tests.
func NewFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func sessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPrefix, models.SchemaVersion) + id
}

func reportKey(id string) string {
	return fmt.Sprintf(reportKeyPrefix, models.SchemaVersion) + id
}

// PutSession stores a session under its ID with the given lifetime.
func (s *Store) PutSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	copied := *session
	copied.Version = models.SchemaVersion
	data, err := json.Marshal(&copied)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeStorageError, err)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}
	if session.Version != models.SchemaVersion {
		return nil, nil
	}
	return &session, nil
}

// DeleteSession removes a session and its cached report.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID), reportKey(sessionID)).Err(); err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// PutReport caches the import report for a session.
func (s *Store) PutReport(ctx context.Context, report *models.CachedReport, ttl time.Duration) error {
	copied := *report
	copied.Version = models.SchemaVersion
	data, err := json.Marshal(&copied)
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}
	if err := s.client.Set(ctx, reportKey(report.SessionID), data, ttl).Err(); err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// GetReport retrieves the cached import report for a session.
func (s *Store) GetReport(ctx context.Context, sessionID string) (*models.CachedReport, error) {
	data, err := s.client.Get(ctx, reportKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeStorageError, err)
	}
	var report models.CachedReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal report")
	}
	if report.Version != models.SchemaVersion {
		return nil, nil
	}
	return &report, nil
}

// DeleteReport drops the cached import report for a session.
func (s *Store) DeleteReport(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, reportKey(sessionID)).Err(); err != nil {
		return errors.WithCode(errors.CodeStorageError, err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys natively.
func (s *Store) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Close releases the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
