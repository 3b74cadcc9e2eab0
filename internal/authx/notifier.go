// Package authx carries the session-expiry signal between the backend
// client layer and the web handlers, and inspects access-token claims
// locally without contacting the backend.
package authx

import "sync"

// ExpiredFunc is invoked when a session is declared expired. The session
// ID identifies which visitor lost authentication.
type ExpiredFunc func(sessionID string)

// Notifier fans out session-expiry events to registered listeners.
// Handlers that receive an unauthorized response from the backend call
// Expire instead of each reimplementing the teardown.
type Notifier struct {
	mu        sync.RWMutex
	listeners []ExpiredFunc
}

// NewNotifier creates a Notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// OnSessionExpired registers a callback to run whenever a session expires.
// Callbacks run synchronously in registration order.
func (n *Notifier) OnSessionExpired(fn ExpiredFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Expire declares the session expired and invokes every listener.
func (n *Notifier) Expire(sessionID string) {
	n.mu.RLock()
	listeners := make([]ExpiredFunc, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()
	for _, fn := range listeners {
		fn(sessionID)
	}
}
