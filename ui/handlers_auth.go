package ui

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "sitepulse/internal/errors"
	"sitepulse/models"
)

// handleLogin renders the login screen. A visitor who already holds a live
// session is sent straight to the dashboard.
func (s *Server) handleLogin(c *gin.Context) {
	if sid, err := c.Cookie(sessionCookie); err == nil && sid != "" {
		if session, err := s.store.GetSession(c.Request.Context(), sid); err == nil && session != nil {
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
		s.clearCookie(c)
	}

	data := gin.H{"Username": ""}
	switch c.Query("flash") {
	case flashExpired:
		data["Notice"] = "Your session has expired. Please log in again."
	case flashCreated:
		data["Notice"] = "Account created. Please log in."
	case flashLoggedOut:
		data["Notice"] = "You have been logged out."
	}
	s.renderTemplate(c, "login.html", data)
}

// handleLoginSubmit validates the form locally, then exchanges credentials
// for a token bundle and opens a session.
func (s *Server) handleLoginSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "login.html", gin.H{
			"Error":    "Username and password are required.",
			"Username": username,
		})
		return
	}

	result, err := s.api.Login(c.Request.Context(), username, password)
	if err != nil {
		log.Printf("[Login] Failed for %q: %v", username, err)
		c.Status(http.StatusUnauthorized)
		s.renderTemplate(c, "login.html", gin.H{
			"Error":    backendMessage(err, "Login failed. Please try again."),
			"Username": username,
		})
		return
	}

	if _, err := s.beginSession(c, result); err != nil {
		log.Printf("[Login] Failed to persist session: %v", err)
		c.Status(http.StatusInternalServerError)
		s.renderTemplate(c, "login.html", gin.H{"Error": "Something went wrong. Please try again."})
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// handleSignup renders the account-creation screen.
func (s *Server) handleSignup(c *gin.Context) {
	s.renderTemplate(c, "signup.html", gin.H{"Username": "", "Email": ""})
}

// handleSignupSubmit validates the form locally before any backend call:
// empty fields and password mismatch never leave the server.
func (s *Server) handleSignupSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	data := gin.H{"Username": username, "Email": email}
	switch {
	case username == "" || email == "" || password == "":
		data["Error"] = "All fields are required."
	case password != confirm:
		data["Error"] = "Passwords do not match."
	}
	if _, failed := data["Error"]; failed {
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "signup.html", data)
		return
	}

	err := s.api.Signup(c.Request.Context(), models.SignupParams{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		log.Printf("[Signup] Failed for %q: %v", username, err)
		data["Error"] = backendMessage(err, "Signup failed. Please try again.")
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "signup.html", data)
		return
	}
	c.Redirect(http.StatusFound, "/?flash="+flashCreated)
}

// handleLogout drops the session and returns to the login screen.
func (s *Server) handleLogout(c *gin.Context) {
	session := currentSession(c)
	if session != nil {
		if err := s.store.DeleteSession(c.Request.Context(), session.ID); err != nil {
			log.Printf("[Logout] Failed to drop session: %v", err)
		}
		s.stages.Stop(session.ID)
	}
	s.clearCookie(c)
	c.Redirect(http.StatusFound, "/?flash="+flashLoggedOut)
}

// backendMessage surfaces the backend's human-readable detail when one was
// preserved, the fallback otherwise.
func backendMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
