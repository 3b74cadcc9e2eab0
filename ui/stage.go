package ui

import (
	"sync"
	"time"
)

// stageMessages rotate on the upload screen while a prediction is in flight.
var stageMessages = []string{
	"Generating Report",
	"Fetching Data",
	"Wrapping Up",
}

const stageInterval = 2 * time.Second

// stageTracker holds one cosmetic progress ticker per session. The ticker
// says nothing about real backend progress; it only gives the upload screen
// something to poll.
type stageTracker struct {
	mu     sync.Mutex
	active map[string]*stageState
}

type stageState struct {
	index int
	done  chan struct{}
}

func newStageTracker() *stageTracker {
	return &stageTracker{active: make(map[string]*stageState)}
}

// Start begins rotating stages for the session, replacing any prior ticker.
func (t *stageTracker) Start(sid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prior, ok := t.active[sid]; ok {
		close(prior.done)
	}
	state := &stageState{done: make(chan struct{})}
	t.active[sid] = state

	go func() {
		ticker := time.NewTicker(stageInterval)
		defer ticker.Stop()
		for {
			select {
			case <-state.done:
				return
			case <-ticker.C:
				t.mu.Lock()
				if t.active[sid] == state {
					state.index = (state.index + 1) % len(stageMessages)
				}
				t.mu.Unlock()
			}
		}
	}()
}

// Stop halts the session's ticker. Safe to call when none is running; called
// on success and on failure alike.
func (t *stageTracker) Stop(sid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.active[sid]; ok {
		close(state.done)
		delete(t.active, sid)
	}
}

// Current returns the stage message for the session and whether a prediction
// is in flight.
func (t *stageTracker) Current(sid string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.active[sid]
	if !ok {
		return "", false
	}
	return stageMessages[state.index], true
}
