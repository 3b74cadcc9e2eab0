package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/models"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and runs
// the migration. Skips when no test database is configured.
func setupTestDB(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping Postgres store test")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))

	t.Cleanup(func() {
		db.Exec("DELETE FROM import_reports")
		db.Exec("DELETE FROM visitor_sessions")
		db.Close()
	})
	return NewFromDB(db)
}

func TestStore_SessionRoundTrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	session := &models.Session{
		ID:           "sid-pg-1",
		AccessToken:  "tok",
		RefreshToken: "ref",
		UserID:       123456,
		IsSudo:       true,
	}
	require.NoError(t, store.PutSession(ctx, session, time.Minute))

	got, err := store.GetSession(ctx, "sid-pg-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.AccessToken)
	assert.True(t, got.IsSudo)
}

func TestStore_DeleteSessionCascadesReport(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, &models.Session{ID: "sid-pg-2", AccessToken: "tok", UserID: 1}, time.Minute))
	require.NoError(t, store.PutReport(ctx, &models.CachedReport{SessionID: "sid-pg-2", Prediction: "p", CSVData: "a\n1\n"}, time.Minute))
	require.NoError(t, store.DeleteSession(ctx, "sid-pg-2"))

	report, err := store.GetReport(ctx, "sid-pg-2")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestStore_SweepRemovesExpired(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, &models.Session{ID: "sid-pg-3", AccessToken: "tok", UserID: 1}, -time.Minute))

	removed, err := store.Sweep(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 1)

	got, err := store.GetSession(ctx, "sid-pg-3")
	require.NoError(t, err)
	assert.Nil(t, got)
}
