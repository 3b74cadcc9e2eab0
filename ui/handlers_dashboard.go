package ui

import (
	"log"
	"sort"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"sitepulse/models"
)

// handleDashboard aggregates the landing screen: profile summary, the most
// recent import, and (for admins) the account count. The three fetches run
// concurrently and a failed one leaves its card empty rather than blanking
// the whole page. Only an unauthorized response tears the session down.
func (s *Server) handleDashboard(c *gin.Context) {
	session := currentSession(c)
	ctx := c.Request.Context()

	var (
		profile   *models.Profile
		latest    *models.RecentImport
		userCount int
	)

	// Plain Group, not WithContext: one card failing must not cancel the
	// other fetches.
	var g errgroup.Group

	g.Go(func() error {
		p, err := s.api.Profile(ctx, session.AccessToken)
		if err != nil {
			log.Printf("[Dashboard] Profile fetch failed: %v", err)
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		recents, err := s.api.RecentImports(ctx, session.AccessToken)
		if err != nil {
			log.Printf("[Dashboard] Recent imports fetch failed: %v", err)
			return err
		}
		if len(recents) == 0 {
			return nil
		}
		sort.SliceStable(recents, func(i, j int) bool {
			return recents[i].When().After(recents[j].When())
		})
		latest = &recents[0]
		return nil
	})

	if session.IsSudo {
		g.Go(func() error {
			users, err := s.api.AdminUsers(ctx, session.AccessToken)
			if err != nil {
				log.Printf("[Dashboard] Admin user count fetch failed: %v", err)
				return err
			}
			userCount = len(users)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		// Non-auth failures fall through; the cards render with what
		// loaded.
	}

	data := gin.H{
		"Profile":   profile,
		"Latest":    latest,
		"IsSudo":    session.IsSudo,
		"UserCount": userCount,
	}
	if latest != nil {
		if series, summary, err := seriesFromChartData(latest.ChartData); err == nil {
			data["LatestSeries"] = chartJSON(series)
			data["LatestSummary"] = summary
		}
	}
	s.renderTemplate(c, "dashboard.html", data)
}
