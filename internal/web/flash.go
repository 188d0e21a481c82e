package web

import "sync"

// Flash is the web rendition of the notification surface: alerts
// accumulate between requests and are drained into the next rendered
// page. Confirm always answers yes because the web layer gates
// destructive operations behind its own confirmation page; a user who
// declines simply never submits it.
type Flash struct {
	mu   sync.Mutex
	msgs []string
}

// Alertf queues a user-visible notification.
func (f *Flash) Alertf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sprintf(format, args...))
}

// Confirm reports the confirmation the confirm page already gathered.
func (f *Flash) Confirm(string) bool { return true }

// Drain returns and clears the queued notifications.
func (f *Flash) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.msgs
	f.msgs = nil
	return out
}
