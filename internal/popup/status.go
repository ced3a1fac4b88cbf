package popup

import (
	"sync"
	"time"
)

// StatusKey selects a status message
type StatusKey string

const (
	StatusAddition       StatusKey = "addition"
	StatusRemoval        StatusKey = "removal"
	StatusExists         StatusKey = "exists"
	StatusNotValidTarget StatusKey = "not-valid-target"
	StatusUnknown        StatusKey = "unknown"
)

var statusText = map[StatusKey]string{
	StatusAddition:       "Bookmark added",
	StatusRemoval:        "Bookmark removed",
	StatusExists:         "Bookmark already exists",
	StatusNotValidTarget: "Not a SignUpGenius page",
	StatusUnknown:        "Hmmm that didn't work",
}

// Text returns the message for key; unknown keys get the StatusUnknown text
func (k StatusKey) Text() string {
	if t, ok := statusText[k]; ok {
		return t
	}
	return statusText[StatusUnknown]
}

// StatusSurface displays one transient message.
// Hide may be called from a timer goroutine.
type StatusSurface interface {
	Show(text string)
	Hide()
}

// Notifier shows status messages and hides them after a fixed delay
type Notifier struct {
	surface StatusSurface
	delay   time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped by every Notify and Stop
}

// NewNotifier creates a notifier hiding messages after delay
func NewNotifier(surface StatusSurface, delay time.Duration) *Notifier {
	return &Notifier{surface: surface, delay: delay}
}

// Notify shows the message for key. A pending hide is pushed back.
func (n *Notifier) Notify(key StatusKey) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.surface.Show(key.Text())
	n.timer = time.AfterFunc(n.delay, func() { n.hide(gen) })
}

// hide clears the message shown by Notify call gen. A timer that fired
// but lost the lock to a newer Notify finds gen outdated and does nothing.
func (n *Notifier) hide(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		return
	}
	n.timer = nil
	n.surface.Hide()
}

// Stop cancels a pending hide
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
