package ui

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sitepulse/models"
)

// handleSudoPanel lists every account for the administrator.
func (s *Server) handleSudoPanel(c *gin.Context) {
	session := currentSession(c)

	users, err := s.api.AdminUsers(c.Request.Context(), session.AccessToken)
	if err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[SudoPanel] User list failed: %v", err)
		s.renderTemplate(c, "sudo_panel.html", gin.H{
			"Error": backendMessage(err, "Could not load users."),
		})
		return
	}

	data := gin.H{"Users": users}
	switch c.Query("flash") {
	case "updated":
		data["Notice"] = "User updated."
	case "deleted":
		data["Notice"] = "User deleted."
	}
	s.renderTemplate(c, "sudo_panel.html", data)
}

// handleSudoUpdate applies a password reset and/or admin-flag change to the
// selected account. Blank fields leave the corresponding attribute alone.
func (s *Server) handleSudoUpdate(c *gin.Context) {
	session := currentSession(c)

	userID, err := strconv.ParseInt(c.PostForm("user_id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusFound, "/sudo-panel")
		return
	}

	params := models.AdminUpdateParams{UserID: userID}
	if password := c.PostForm("new_password"); strings.TrimSpace(password) != "" {
		params.NewPassword = &password
	}
	if c.PostForm("is_admin_set") == "1" {
		isAdmin := c.PostForm("is_admin") == "on"
		params.IsAdmin = &isAdmin
	}

	if err := s.api.AdminUpdate(c.Request.Context(), session.AccessToken, params); err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[SudoPanel] Update failed for user %d: %v", userID, err)
		s.renderTemplate(c, "sudo_panel.html", gin.H{
			"Error": backendMessage(err, "Could not update user."),
		})
		return
	}
	c.Redirect(http.StatusFound, "/sudo-panel?flash=updated")
}

// handleSudoDelete removes an account. The form carries an explicit
// confirmation flag; a request without it is ignored.
func (s *Server) handleSudoDelete(c *gin.Context) {
	session := currentSession(c)

	if c.PostForm("confirm") != "yes" {
		c.Redirect(http.StatusFound, "/sudo-panel")
		return
	}
	userID, err := strconv.ParseInt(c.PostForm("user_id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusFound, "/sudo-panel")
		return
	}

	if err := s.api.AdminDelete(c.Request.Context(), session.AccessToken, userID); err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[SudoPanel] Delete failed for user %d: %v", userID, err)
		s.renderTemplate(c, "sudo_panel.html", gin.H{
			"Error": backendMessage(err, "Could not delete user."),
		})
		return
	}
	c.Redirect(http.StatusFound, "/sudo-panel?flash=deleted")
}

// handleAuditLogs shows the audit trail verbatim, newest first.
func (s *Server) handleAuditLogs(c *gin.Context) {
	session := currentSession(c)

	logs, err := s.api.AuditLogs(c.Request.Context(), session.AccessToken)
	if err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[AuditLogs] Fetch failed: %v", err)
		s.renderTemplate(c, "audit_logs.html", gin.H{
			"Error": backendMessage(err, "Could not load audit logs."),
		})
		return
	}
	s.renderTemplate(c, "audit_logs.html", gin.H{"Logs": logs})
}
