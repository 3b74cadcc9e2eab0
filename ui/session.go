package ui

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sitepulse/internal/authx"
	apperrors "sitepulse/internal/errors"
	"sitepulse/models"
)

const (
	sessionCookie  = "sp_session"
	sessionCtxKey  = "session"
	flashExpired   = "expired"
	flashCreated   = "created"
	flashLoggedOut = "logged_out"
)

// requireSession guards authenticated routes. A request without a live
// session is redirected to the login screen before any backend call happens.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		session, err := s.store.GetSession(c.Request.Context(), sid)
		if err != nil {
			log.Printf("[Session] Store read failed: %v", err)
			s.clearCookie(c)
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		if session == nil {
			s.clearCookie(c)
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		// Proactive expiry: a token that has already lapsed is not worth
		// a round trip to the backend.
		if claims, err := authx.InspectToken(session.AccessToken); err == nil && claims.Lapsed(time.Now()) {
			s.expireSession(c, session.ID)
			return
		}

		c.Set(sessionCtxKey, session)
		c.Next()
	}
}

// requireSudo gates the admin panel on the session's admin flag. The backend
// still enforces authorization; this only hides the screens.
func (s *Server) requireSudo() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session == nil || !session.IsSudo {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentSession returns the session attached by requireSession, nil outside
// guarded routes.
func currentSession(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionCtxKey)
	if !ok {
		return nil
	}
	session, _ := v.(*models.Session)
	return session
}

// beginSession mints a session id, persists the token bundle and sets the
// visitor cookie.
func (s *Server) beginSession(c *gin.Context, result *models.LoginResult) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		ID:           uuid.NewString(),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		UserID:       result.UserID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.SessionTTL),
	}
	if claims, err := authx.InspectToken(result.AccessToken); err == nil {
		session.IsSudo = claims.IsSudo
	}
	if err := s.store.PutSession(c.Request.Context(), session, s.cfg.SessionTTL); err != nil {
		return nil, err
	}
	c.SetCookie(sessionCookie, session.ID, int(s.cfg.SessionTTL.Seconds()), "/", "", s.cfg.CookieSecure, true)
	return session, nil
}

// expireSession tears the session down through the notifier and bounces the
// visitor to the login screen with the "please log in again" prompt.
func (s *Server) expireSession(c *gin.Context, sid string) {
	s.notifier.Expire(sid)
	s.clearCookie(c)
	c.Redirect(http.StatusFound, "/?flash="+flashExpired)
	c.Abort()
}

func (s *Server) clearCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", s.cfg.CookieSecure, true)
}

// failUnauthorized is the uniform handler for backend calls that came back
// unauthorized: the session is expired and the request redirected. It returns
// true when it handled the error.
func (s *Server) failUnauthorized(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	session := currentSession(c)
	if session == nil {
		return false
	}
	if !apperrors.IsUnauthorized(err) {
		return false
	}
	s.expireSession(c, session.ID)
	return true
}
