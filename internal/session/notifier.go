// Package session signals that the stored session can no longer be refreshed.
package session

import "sync"

// Notifier holds at most one session-expired handler.
type Notifier struct {
	mu      sync.Mutex
	handler func()
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// RegisterHandler replaces the current handler. A nil handler unregisters.
func (n *Notifier) RegisterHandler(h func()) {
	n.mu.Lock()
	n.handler = h
	n.mu.Unlock()
}

// Notify invokes the current handler, if any. It reports whether one ran.
// A nil Notifier has no handler.
func (n *Notifier) Notify() bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	h := n.handler
	n.mu.Unlock()

	if h == nil {
		return false
	}
	h()
	return true
}
