package memstore

import (
	"context"
	"sync"
	"time"

	"sitepulse/models"
	"sitepulse/ports"
)

// Store is the in-memory StateStore driver, the default for single-process
// deployments and tests.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	reports  map[string]reportEntry
}

type entry struct {
	session   models.Session
	expiresAt time.Time
}

type reportEntry struct {
	report    models.CachedReport
	expiresAt time.Time
}

var _ ports.StateStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		sessions: make(map[string]entry),
		reports:  make(map[string]reportEntry),
	}
}

// PutSession stores a session under its ID with the given lifetime.
func (s *Store) PutSession(_ context.Context, session *models.Session, ttl time.Duration) error {
	copied := *session
	copied.Version = models.SchemaVersion
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = entry{session: copied, expiresAt: time.Now().Add(ttl)}
	return nil
}

// GetSession retrieves a session by ID, treating expired or foreign-version
// records as absent.
func (s *Store) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok || time.Now().After(e.expiresAt) || e.session.Version != models.SchemaVersion {
		return nil, nil
	}
	copied := e.session
	return &copied, nil
}

// DeleteSession removes a session and its cached report.
func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	delete(s.reports, sessionID)
	return nil
}

// PutReport caches the import report for a session.
func (s *Store) PutReport(_ context.Context, report *models.CachedReport, ttl time.Duration) error {
	copied := *report
	copied.Version = models.SchemaVersion
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.SessionID] = reportEntry{report: copied, expiresAt: time.Now().Add(ttl)}
	return nil
}

// GetReport retrieves the cached import report for a session.
func (s *Store) GetReport(_ context.Context, sessionID string) (*models.CachedReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.reports[sessionID]
	if !ok || time.Now().After(e.expiresAt) || e.report.Version != models.SchemaVersion {
		return nil, nil
	}
	copied := e.report
	return &copied, nil
}

// DeleteReport drops the cached import report for a session.
func (s *Store) DeleteReport(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, sessionID)
	return nil
}

// Sweep evicts expired entries.
func (s *Store) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	for id, e := range s.reports {
		_, sessionAlive := s.sessions[id]
		if now.After(e.expiresAt) || !sessionAlive {
			delete(s.reports, id)
			removed++
		}
	}
	return removed, nil
}

// Close releases nothing for the in-memory driver.
func (s *Store) Close() error {
	return nil
}
