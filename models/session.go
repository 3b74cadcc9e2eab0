package models

import "time"

// SchemaVersion tags every record written to the visitor state store.
// Stores refuse to return records written under a different version.
const SchemaVersion = 1

// Session is the per-visitor credential record, the server-side counterpart
// of the browser's token/refresh_token/userid/is_sudo storage keys.
type Session struct {
	Version      int       `json:"version" db:"version"`
	ID           string    `json:"id" db:"id"`
	AccessToken  string    `json:"access_token" db:"access_token"`
	RefreshToken string    `json:"refresh_token" db:"refresh_token"`
	UserID       int64     `json:"userid" db:"user_id"`
	IsSudo       bool      `json:"is_sudo" db:"is_sudo"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// CachedReport is the reload-survival cache for the import report view:
// the prediction text plus the raw CSV it was generated from.
type CachedReport struct {
	Version    int       `json:"version" db:"version"`
	SessionID  string    `json:"session_id" db:"session_id"`
	Prediction string    `json:"prediction" db:"prediction"`
	CSVData    string    `json:"csv_data" db:"csv_data"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
