package client

import "log"

// Notifier is the user-facing notification surface. Every transport
// failure is reported through Alertf and converted to a benign
// fallback; Confirm gates destructive operations.
type Notifier interface {
	Alertf(format string, args ...any)
	Confirm(prompt string) bool
}

// LogNotifier writes alerts to the process log and confirms nothing.
// It is the fallback when no interactive surface is wired in.
type LogNotifier struct{}

func (LogNotifier) Alertf(format string, args ...any) {
	log.Printf("alert: "+format, args...)
}

func (LogNotifier) Confirm(prompt string) bool {
	log.Printf("confirm (auto-declined): %s", prompt)
	return false
}
