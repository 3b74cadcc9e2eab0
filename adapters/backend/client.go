package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sitepulse/internal/errors"
	"sitepulse/models"
	"sitepulse/ports"
)

// DefaultTimeout bounds every backend call. There is no retry layer on top;
// a failed request surfaces once and the user resubmits explicitly.
const DefaultTimeout = 30 * time.Second

// Client talks to the remote construction-progress API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.ProgressAPI = (*Client)(nil)

// New creates a backend client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// detailBody is the error envelope the backend uses for failures.
type detailBody struct {
	Detail string `json:"detail"`
}

// apiError maps a non-2xx response to an application error, preserving the
// backend-provided message when one is present. Unauthorized responses (and
// the explicit "Invalid token" detail) become CodeUnauthorized so callers can
// fail closed uniformly.
func apiError(op string, resp *http.Response, fallback string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	message := fallback
	var detail detailBody
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		message = detail.Detail
	}
	if resp.StatusCode == http.StatusUnauthorized || message == "Invalid token" {
		log.Printf("[Backend] %s unauthorized: %s", op, message)
		return errors.Unauthorized(message)
	}
	log.Printf("[Backend] %s failed with status %d: %s", op, resp.StatusCode, message)
	return errors.BackendError(message)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "backend request failed")
	}
	return resp, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path, token string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func decodeInto(resp *http.Response, out interface{}) error {
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode backend response")
	}
	return nil
}

// Login exchanges credentials for a token bundle via the form-encoded
// /login endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("login", resp, "Invalid credentials, please try again.")
	}

	var result models.LoginResult
	if err := decodeInto(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup creates a new account.
func (c *Client) Signup(ctx context.Context, params models.SignupParams) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/signup", "", params)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError("signup", resp, "Signup failed. The username may already be taken.")
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Profile fetches the current user's profile summary.
func (c *Client) Profile(ctx context.Context, token string) (*models.Profile, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/protected", token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("profile", resp, "Failed to fetch profile data.")
	}
	var profile models.Profile
	if err := decodeInto(resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword rotates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	payload := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/change-password", token, payload)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("change-password", resp, "Failed to change password.")
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ChangeUsername renames the current account.
func (c *Client) ChangeUsername(ctx context.Context, token, newUsername string) error {
	payload := map[string]string{"new_username": newUsername}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/change-username", token, payload)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("change-username", resp, "Failed to change username.")
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// UploadProfilePic replaces the avatar image and returns its new URL.
func (c *Client) UploadProfilePic(ctx context.Context, token, filename string, image io.Reader) (string, error) {
	req, err := c.newMultipartRequest(ctx, "/upload-profile-pic", token, "profile_pic", filename, image)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError("upload-profile-pic", resp, "Failed to upload profile picture.")
	}
	var result struct {
		ProfilePic string `json:"profile_pic"`
	}
	if err := decodeInto(resp, &result); err != nil {
		return "", err
	}
	return result.ProfilePic, nil
}

// Predict submits the raw CSV report as multipart form data and returns the
// natural-language prediction with its chart series.
func (c *Client) Predict(ctx context.Context, token, filename string, csv io.Reader) (*models.PredictResult, error) {
	req, err := c.newMultipartRequest(ctx, "/predict", token, "file", filename, csv)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("predict", resp, "Failed to process CSV file.")
	}
	var result models.PredictResult
	if err := decodeInto(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecentImports lists prior prediction runs.
func (c *Client) RecentImports(ctx context.Context, token string) ([]models.RecentImport, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/recent-imports", token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("recent-imports", resp, "Failed to fetch recent imports.")
	}
	var imports []models.RecentImport
	if err := decodeInto(resp, &imports); err != nil {
		return nil, err
	}
	return imports, nil
}

// AdminUsers lists all accounts.
func (c *Client) AdminUsers(ctx context.Context, token string) ([]models.AdminUser, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/admin-panel-users", token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("admin-users", resp, "Failed to fetch users.")
	}
	var users []models.AdminUser
	if err := decodeInto(resp, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminUpdate updates a user's password and/or admin flag.
func (c *Client) AdminUpdate(ctx context.Context, token string, params models.AdminUpdateParams) error {
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/admin-panel", token, params)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("admin-update", resp, "Failed to update user.")
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// AdminDelete removes a user.
func (c *Client) AdminDelete(ctx context.Context, token string, userID int64) error {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, fmt.Sprintf("/admin-panel/%d", userID), token, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("admin-delete", resp, "Failed to delete user.")
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// AuditLogs fetches audit log lines.
func (c *Client) AuditLogs(ctx context.Context, token string) ([]string, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/logs", token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("logs", resp, "Failed to fetch audit logs.")
	}
	var lines []string
	if err := decodeInto(resp, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// newMultipartRequest builds a multipart upload request with a single file
// field. The file is buffered into the multipart body before sending; the
// upload ceiling is enforced by the caller before this point.
func (c *Client) newMultipartRequest(ctx context.Context, path, token, fieldName, filename string, file io.Reader) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create multipart field")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.Wrap(err, "failed to buffer upload")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
