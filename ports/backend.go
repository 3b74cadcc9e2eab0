package ports

import (
	"context"
	"io"

	"sitepulse/models"
)

// ProgressAPI is the typed client surface for the remote construction-progress
// backend: one method per endpoint, stateless, bearer token passed per call.
// Implementations never retry; a failed call is reported once and resubmission
// is an explicit user action.
type ProgressAPI interface {
	// Login exchanges credentials (form-encoded) for a token bundle.
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)

	// Signup creates a new account.
	Signup(ctx context.Context, params models.SignupParams) error

	// Profile fetches the current user's profile summary.
	Profile(ctx context.Context, token string) (*models.Profile, error)

	// ChangePassword rotates the current user's password.
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error

	// ChangeUsername renames the current account.
	ChangeUsername(ctx context.Context, token, newUsername string) error

	// UploadProfilePic replaces the avatar image and returns its new URL.
	UploadProfilePic(ctx context.Context, token, filename string, image io.Reader) (string, error)

	// Predict submits a CSV progress report and returns the AI prediction.
	Predict(ctx context.Context, token, filename string, csv io.Reader) (*models.PredictResult, error)

	// RecentImports lists prior prediction runs with chart-ready series.
	RecentImports(ctx context.Context, token string) ([]models.RecentImport, error)

	// AdminUsers lists all accounts (admin only).
	AdminUsers(ctx context.Context, token string) ([]models.AdminUser, error)

	// AdminUpdate updates a user's password and/or admin flag (admin only).
	AdminUpdate(ctx context.Context, token string, params models.AdminUpdateParams) error

	// AdminDelete removes a user (admin only).
	AdminDelete(ctx context.Context, token string, userID int64) error

	// AuditLogs fetches audit log lines, newest first (admin only).
	AuditLogs(ctx context.Context, token string) ([]string, error)
}
