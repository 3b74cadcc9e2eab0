// Package ui is the visitor-facing web server: server-rendered screens over
// the remote progress API, with per-visitor state held in the state store.
package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"sitepulse/internal/authx"
	"sitepulse/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Config holds the UI server's runtime settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	CookieSecure   bool
	MaxCSVBytes    int64
	SessionTTL     time.Duration
	ReportTTL      time.Duration
}

// Server wires the route handlers to the backend client, the state store and
// the session-expiry notifier.
type Server struct {
	router    *gin.Engine
	api       ports.ProgressAPI
	store     ports.StateStore
	notifier  *authx.Notifier
	exporters map[string]ports.ReportExporter
	templates *template.Template
	stages    *stageTracker
	cfg       Config
	http      *http.Server
}

// NewServer creates the web server and registers every route.
func NewServer(cfg Config, api ports.ProgressAPI, store ports.StateStore, notifier *authx.Notifier, exporters map[string]ports.ReportExporter) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		api:       api,
		store:     store,
		notifier:  notifier,
		exporters: exporters,
		templates: templates,
		stages:    newStageTracker(),
		cfg:       cfg,
	}

	// The notifier owns session teardown so every unauthorized path
	// converges on the same cleanup.
	notifier.OnSessionExpired(func(sid string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.DeleteSession(ctx, sid); err != nil {
			log.Printf("[Session] Failed to drop expired session: %v", err)
		}
		s.stages.Stop(sid)
	})

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		"add": func(a, b int) int { return a + b },
	}

	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	return template.New("").Funcs(funcMap).ParseFS(templatesFS, "*.html")
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())

	if len(s.cfg.AllowedOrigins) > 0 {
		corsCfg := cors.Config{
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:       5 * time.Minute,
		}
		// Credentialed CORS and a wildcard origin are mutually exclusive.
		if len(s.cfg.AllowedOrigins) == 1 && s.cfg.AllowedOrigins[0] == "*" {
			corsCfg.AllowAllOrigins = true
		} else {
			corsCfg.AllowOrigins = s.cfg.AllowedOrigins
			corsCfg.AllowCredentials = true
		}
		s.router.Use(cors.New(corsCfg))
	}

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	// Public screens
	s.router.GET("/", s.handleLogin)
	s.router.POST("/login", s.handleLoginSubmit)
	s.router.GET("/signup", s.handleSignup)
	s.router.POST("/signup", s.handleSignupSubmit)

	// Authenticated screens
	auth := s.router.Group("/", s.requireSession())
	auth.POST("/logout", s.handleLogout)
	auth.GET("/dashboard", s.handleDashboard)
	auth.GET("/profile", s.handleProfile)
	auth.POST("/profile/username", s.handleChangeUsername)
	auth.POST("/profile/avatar", s.handleAvatarUpload)
	auth.GET("/change-password", s.handleChangePassword)
	auth.POST("/change-password", s.handleChangePasswordSubmit)
	auth.GET("/predict", s.handlePredict)
	auth.POST("/predict", s.handlePredictSubmit)
	auth.GET("/predict/progress", s.handlePredictProgress)
	auth.GET("/import-report", s.handleImportReport)
	auth.GET("/import-report/export", s.handleExportReport)
	auth.GET("/recents", s.handleRecents)
	auth.GET("/recents/:index/view", s.handleRecentView)

	// Admin screens
	sudo := s.router.Group("/sudo-panel", s.requireSession(), s.requireSudo())
	sudo.GET("", s.handleSudoPanel)
	sudo.POST("/update", s.handleSudoUpdate)
	sudo.POST("/delete", s.handleSudoDelete)
	sudo.GET("/audit", s.handleAuditLogs)

	s.router.NoRoute(s.handleNotFound)
}

// Start starts the web server
func (s *Server) Start() error {
	log.Printf("Starting SitePulse UI on http://%s", s.cfg.Addr)
	s.http = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleNotFound(c *gin.Context) {
	c.Status(http.StatusNotFound)
	s.renderTemplate(c, "notfound.html", gin.H{"Path": c.Request.URL.Path})
}
