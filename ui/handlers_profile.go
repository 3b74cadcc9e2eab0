package ui

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleProfile renders the account screen from GET /protected.
func (s *Server) handleProfile(c *gin.Context) {
	session := currentSession(c)

	profile, err := s.api.Profile(c.Request.Context(), session.AccessToken)
	if err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[Profile] Fetch failed: %v", err)
		s.renderTemplate(c, "profile.html", gin.H{
			"Error": backendMessage(err, "Could not load your profile."),
		})
		return
	}

	data := gin.H{"Profile": profile, "IsSudo": session.IsSudo}
	switch c.Query("flash") {
	case "renamed":
		data["Notice"] = "Username updated."
	case "avatar":
		data["Notice"] = "Profile picture updated."
	}
	s.renderTemplate(c, "profile.html", data)
}

// handleChangeUsername renames the account.
func (s *Server) handleChangeUsername(c *gin.Context) {
	session := currentSession(c)

	newUsername := strings.TrimSpace(c.PostForm("new_username"))
	if newUsername == "" {
		s.renderProfileError(c, session.AccessToken, "Username cannot be empty.")
		return
	}

	if err := s.api.ChangeUsername(c.Request.Context(), session.AccessToken, newUsername); err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[Profile] Rename failed: %v", err)
		s.renderProfileError(c, session.AccessToken, backendMessage(err, "Could not change username."))
		return
	}
	c.Redirect(http.StatusFound, "/profile?flash=renamed")
}

// handleAvatarUpload replaces the profile picture. The upload screen previews
// the chosen image client-side and cancel restores the prior avatar without
// a request; only a confirmed choice reaches this handler.
func (s *Server) handleAvatarUpload(c *gin.Context) {
	session := currentSession(c)

	file, header, err := c.Request.FormFile("profile_pic")
	if err != nil {
		s.renderProfileError(c, session.AccessToken, "Please choose an image to upload.")
		return
	}
	defer file.Close()

	if _, err := s.api.UploadProfilePic(c.Request.Context(), session.AccessToken, header.Filename, file); err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[Profile] Avatar upload failed: %v", err)
		s.renderProfileError(c, session.AccessToken, backendMessage(err, "Could not upload profile picture."))
		return
	}
	c.Redirect(http.StatusFound, "/profile?flash=avatar")
}

// renderProfileError re-renders the profile screen with an error banner,
// keeping the summary populated when it still loads.
func (s *Server) renderProfileError(c *gin.Context, token, message string) {
	data := gin.H{"Error": message}
	if profile, err := s.api.Profile(c.Request.Context(), token); err == nil {
		data["Profile"] = profile
	}
	c.Status(http.StatusBadRequest)
	s.renderTemplate(c, "profile.html", data)
}

// handleChangePassword renders the password rotation form.
func (s *Server) handleChangePassword(c *gin.Context) {
	s.renderTemplate(c, "change_password.html", gin.H{})
}

// handleChangePasswordSubmit validates locally, then rotates the password
// through the backend and surfaces its message on failure.
func (s *Server) handleChangePasswordSubmit(c *gin.Context) {
	session := currentSession(c)

	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")
	confirm := c.PostForm("confirm_password")

	var localError string
	switch {
	case oldPassword == "" || newPassword == "":
		localError = "All fields are required."
	case newPassword != confirm:
		localError = "New passwords do not match."
	}
	if localError != "" {
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "change_password.html", gin.H{"Error": localError})
		return
	}

	if err := s.api.ChangePassword(c.Request.Context(), session.AccessToken, oldPassword, newPassword); err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[ChangePassword] Failed: %v", err)
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "change_password.html", gin.H{
			"Error": backendMessage(err, "Could not change password."),
		})
		return
	}
	s.renderTemplate(c, "change_password.html", gin.H{"Notice": "Password updated."})
}
