package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/errors"
	"sitepulse/models"
)

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "avery", r.PostFormValue("username"))
		assert.Equal(t, "hunter2", r.PostFormValue("password"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","refresh_token":"ref","token_type":"bearer","userid":123456}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	result, err := client.Login(context.Background(), "avery", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok", result.AccessToken)
	assert.Equal(t, "ref", result.RefreshToken)
	assert.Equal(t, int64(123456), result.UserID)
}

func TestClient_Login_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	_, err := client.Login(context.Background(), "avery", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestClient_Profile_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/protected", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"username":"avery","email":"a@example.com","userid":1,"is_sudo":true,"role":"Admin"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	profile, err := client.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "avery", profile.Username)
	assert.True(t, profile.IsSudo)
}

func TestClient_Profile_InvalidTokenDetail(t *testing.T) {
	// Some deployments report an expired credential as a 400 with an explicit
	// "Invalid token" detail; it must still fail closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Invalid token"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	_, err := client.Profile(context.Background(), "stale")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}

func TestClient_Predict_Multipart(t *testing.T) {
	const csvText = "project_id,progress_percent\nP-1,50\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.csv", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prediction":"On track","chart_data":[{"days_elapsed":10,"planned_progress":50,"actual_progress":48}]}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	result, err := client.Predict(context.Background(), "tok", "report.csv", strings.NewReader(csvText))
	require.NoError(t, err)
	assert.Equal(t, "On track", result.Prediction)
	require.Len(t, result.ChartData, 1)
	assert.Equal(t, 48.0, result.ChartData[0].ActualProgress)
}

func TestClient_Predict_FailurePreservesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Missing required columns: days_elapsed and/or days_remaining."}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	_, err := client.Predict(context.Background(), "tok", "report.csv", strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeBackendError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Missing required columns")
}

func TestClient_Predict_GenericFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	_, err := client.Predict(context.Background(), "tok", "report.csv", strings.NewReader("a\n1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to process CSV file.")
}

func TestClient_AdminDelete_PathContainsUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin-panel/424242", r.URL.Path)
		w.Write([]byte(`{"userid":424242,"username":"gone","is_sudo":false}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	require.NoError(t, client.AdminDelete(context.Background(), "tok", 424242))
}

func TestClient_AdminUpdate_OmitsNilFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		assert.NotContains(t, string(body), "new_password")
		w.Write([]byte(`{"userid":7,"username":"kai","is_sudo":true}`))
	}))
	defer server.Close()

	isAdmin := true
	client := New(server.URL, time.Second)
	err := client.AdminUpdate(context.Background(), "tok", models.AdminUpdateParams{UserID: 7, IsAdmin: &isAdmin})
	require.NoError(t, err)
}

func TestClient_RecentImports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recent-imports", r.URL.Path)
		w.Write([]byte(`[{"prediction":"steady","chart_data":[],"created_at":"2026-08-20T10:00:00"}]`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	imports, err := client.RecentImports(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "steady", imports[0].Prediction)
	assert.Equal(t, 2026, imports[0].When().Year())
}

func TestClient_AuditLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logs", r.URL.Path)
		w.Write([]byte(`["line two","line one"]`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	lines, err := client.AuditLogs(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"line two", "line one"}, lines)
}

func TestClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(server.URL, time.Second)
	_, err := client.Profile(ctx, "tok")
	require.Error(t, err)
}
