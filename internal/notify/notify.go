// Package notify holds the transient notifications shown to the user.
package notify

import (
	"slices"
	"sync"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// Lifetime is how long a notification stays before Expire removes it.
const Lifetime = 5 * time.Second

type Notification struct {
	ID        int64
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Notifier is safe for concurrent use.
type Notifier struct {
	mu     sync.Mutex
	items  []Notification
	lastID int64
	now    func() time.Time
}

func New() *Notifier {
	return &Notifier{now: time.Now}
}

// Push adds a notification. IDs come from the clock in nanoseconds and are bumped when two
// pushes land on the same tick.
func (n *Notifier) Push(sev Severity, msg string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	id := now.UnixNano()
	if id <= n.lastID {
		id = n.lastID + 1
	}
	n.lastID = id
	item := Notification{ID: id, Message: msg, Severity: sev, CreatedAt: now}
	n.items = append(n.items, item)
	return item
}

func (n *Notifier) Success(msg string) Notification { return n.Push(Success, msg) }
func (n *Notifier) Error(msg string) Notification   { return n.Push(Error, msg) }
func (n *Notifier) Info(msg string) Notification    { return n.Push(Info, msg) }
func (n *Notifier) Warning(msg string) Notification { return n.Push(Warning, msg) }

// Active returns the current notifications, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.items)
}

// Expire drops every notification at least Lifetime old and reports how many went.
func (n *Notifier) Expire(now time.Time) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	before := len(n.items)
	n.items = slices.DeleteFunc(n.items, func(it Notification) bool {
		return now.Sub(it.CreatedAt) >= Lifetime
	})
	return before - len(n.items)
}

func (n *Notifier) Dismiss(id int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	before := len(n.items)
	n.items = slices.DeleteFunc(n.items, func(it Notification) bool { return it.ID == id })
	return len(n.items) < before
}
