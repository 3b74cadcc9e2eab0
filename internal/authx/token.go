package authx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "sitepulse/internal/errors"
)

// Claims is the subset of the backend's access-token payload the
// dashboard reads locally.
type Claims struct {
	UserID    int64
	IsSudo    bool
	ExpiresAt time.Time
}

// InspectToken decodes the access token's claims without verifying the
// signature. The signing key lives on the backend; the backend remains the
// authority on validity, this only answers "has this token already lapsed"
// before spending a round trip on it.
func InspectToken(tokenStr string) (*Claims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, apperrors.Unauthorized("malformed access token")
	}

	out := &Claims{}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if userID, ok := claims["userid"]; ok {
		if f, ok := userID.(float64); ok {
			out.UserID = int64(f)
		}
	}
	if isSudo, ok := claims["is_sudo"].(bool); ok {
		out.IsSudo = isSudo
	}
	return out, nil
}

// Lapsed reports whether the token carries an exp claim in the past.
// Tokens without an exp claim are never considered lapsed locally.
func (c *Claims) Lapsed(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
