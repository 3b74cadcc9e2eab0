package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/models"
)

func TestStore_SessionRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	session := &models.Session{ID: "sid-1", AccessToken: "tok", RefreshToken: "ref", UserID: 42, IsSudo: false}
	require.NoError(t, store.PutSession(ctx, session, time.Minute))

	got, err := store.GetSession(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.AccessToken)
	assert.Equal(t, int64(42), got.UserID)
}

func TestStore_GetSession_Absent(t *testing.T) {
	store := New()
	got, err := store.GetSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_DeleteSessionDropsReport(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, &models.Session{ID: "sid-1", AccessToken: "tok"}, time.Minute))
	require.NoError(t, store.PutReport(ctx, &models.CachedReport{SessionID: "sid-1", Prediction: "p"}, time.Minute))
	require.NoError(t, store.DeleteSession(ctx, "sid-1"))

	report, err := store.GetReport(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestStore_SweepEvictsExpired(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, &models.Session{ID: "old", AccessToken: "tok"}, time.Millisecond))
	require.NoError(t, store.PutSession(ctx, &models.Session{ID: "fresh", AccessToken: "tok"}, time.Hour))

	removed, err := store.Sweep(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	fresh, err := store.GetSession(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}

func TestStore_ReportRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	in := &models.CachedReport{SessionID: "sid-2", Prediction: "steady", CSVData: "a,b\n1,2\n"}
	require.NoError(t, store.PutReport(ctx, in, time.Minute))

	got, err := store.GetReport(ctx, "sid-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "steady", got.Prediction)
	assert.Equal(t, models.SchemaVersion, got.Version)
}
