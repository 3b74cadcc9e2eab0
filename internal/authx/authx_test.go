package authx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sitepulse/internal/errors"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestNotifier_FansOutToAllListeners(t *testing.T) {
	notifier := NewNotifier()
	var seen []string
	notifier.OnSessionExpired(func(sid string) { seen = append(seen, "a:"+sid) })
	notifier.OnSessionExpired(func(sid string) { seen = append(seen, "b:"+sid) })

	notifier.Expire("sid-1")

	assert.Equal(t, []string{"a:sid-1", "b:sid-1"}, seen)
}

func TestNotifier_NoListeners(t *testing.T) {
	notifier := NewNotifier()
	assert.NotPanics(t, func() { notifier.Expire("sid-1") })
}

func TestInspectToken_ReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tokenStr := signToken(t, jwt.MapClaims{
		"sub":     "builder",
		"userid":  float64(7),
		"is_sudo": true,
		"exp":     exp.Unix(),
	})

	claims, err := InspectToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.True(t, claims.IsSudo)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
	assert.False(t, claims.Lapsed(time.Now()))
}

func TestInspectToken_LapsedToken(t *testing.T) {
	tokenStr := signToken(t, jwt.MapClaims{
		"userid": float64(7),
		"exp":    time.Now().Add(-time.Minute).Unix(),
	})

	claims, err := InspectToken(tokenStr)
	require.NoError(t, err)
	assert.True(t, claims.Lapsed(time.Now()))
}

func TestInspectToken_NoExpNeverLapses(t *testing.T) {
	tokenStr := signToken(t, jwt.MapClaims{"userid": float64(7)})

	claims, err := InspectToken(tokenStr)
	require.NoError(t, err)
	assert.False(t, claims.Lapsed(time.Now()))
}

func TestInspectToken_Malformed(t *testing.T) {
	_, err := InspectToken("not-a-jwt")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}
