package models

// LoginResult is the token bundle returned by the remote API on login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	UserID       int64  `json:"userid"`
}

// Profile is the current user's summary from GET /protected.
type Profile struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	JoinedDate string `json:"joined_date"`
	UserID     int64  `json:"userid"`
	ProfilePic string `json:"profile_pic"`
	IsSudo     bool   `json:"is_sudo"`
	Role       string `json:"role"`
}

// AdminUser is one account row in the administrator panel list.
type AdminUser struct {
	UserID   int64  `json:"userid"`
	Username string `json:"username"`
	IsSudo   bool   `json:"is_sudo"`
}

// SignupParams are the fields sent to POST /signup.
type SignupParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminUpdateParams updates a user's password and/or admin flag via
// PUT /admin-panel. Nil fields are left unchanged by the backend.
type AdminUpdateParams struct {
	UserID      int64   `json:"userid"`
	NewPassword *string `json:"new_password,omitempty"`
	IsAdmin     *bool   `json:"is_admin,omitempty"`
}
