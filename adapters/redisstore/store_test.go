package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/models"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFromClient(client), mr
}

func TestStore_SessionRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	session := &models.Session{
		ID:           "sid-1",
		AccessToken:  "tok",
		RefreshToken: "ref",
		UserID:       123456,
		IsSudo:       true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.PutSession(ctx, session, time.Minute))

	got, err := store.GetSession(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.AccessToken)
	assert.Equal(t, int64(123456), got.UserID)
	assert.True(t, got.IsSudo)
	assert.Equal(t, models.SchemaVersion, got.Version)
}

func TestStore_GetSession_Absent(t *testing.T) {
	store, _ := setupStore(t)
	got, err := store.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SessionTTLExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, &models.Session{ID: "sid-1", AccessToken: "tok"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := store.GetSession(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_DeleteSessionDropsReport(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, &models.Session{ID: "sid-1", AccessToken: "tok"}, time.Minute))
	require.NoError(t, store.PutReport(ctx, &models.CachedReport{SessionID: "sid-1", Prediction: "p", CSVData: "a,b\n"}, time.Minute))
	require.NoError(t, store.DeleteSession(ctx, "sid-1"))

	session, err := store.GetSession(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, session)

	report, err := store.GetReport(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestStore_ReportRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	in := &models.CachedReport{
		SessionID:  "sid-2",
		Prediction: "## Outlook\nsteady",
		CSVData:    "project_id,progress_percent\nP-1,50\n",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.PutReport(ctx, in, time.Minute))

	got, err := store.GetReport(ctx, "sid-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.Prediction, got.Prediction)
	assert.Equal(t, in.CSVData, got.CSVData)
}

func TestStore_ForeignSchemaVersionTreatedAsAbsent(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	// Simulate a record written by a store with a different schema version.
	mr.Set("sp:v1:session:old", `{"version":99,"id":"old","access_token":"tok"}`)

	got, err := store.GetSession(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, got)
}
