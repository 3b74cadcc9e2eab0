// Package cleanup runs the periodic eviction of expired sessions and
// orphaned cached reports from the state store.
package cleanup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"sitepulse/internal"
	"sitepulse/ports"
)

// Sweeper schedules StateStore.Sweep on a fixed cron cadence.
type Sweeper struct {
	store  ports.StateStore
	cron   *cron.Cron
	logger *internal.Logger
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(store ports.StateStore) *Sweeper {
	return &Sweeper{
		store:  store,
		cron:   cron.New(),
		logger: internal.NewDefaultLogger(),
	}
}

// Start schedules the sweep every 15 minutes and begins the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("*/15 * * * *", s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("[Sweeper] Scheduled state-store sweep every 15 minutes")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	removed, err := s.store.Sweep(ctx, time.Now())
	if err != nil {
		s.logger.Error("[Sweeper] Sweep failed: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Info("[Sweeper] Evicted %d expired entries", removed)
	}
}
