package ui

import (
	"bytes"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// renderTemplate executes a template with the given data, buffering first so
// a mid-render failure never emits a half page.
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	status := c.Writer.Status()
	if status == 0 {
		status = http.StatusOK
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
