// Package eventlog records authorization outcomes (denials, dispenses,
// malfunctions) for operational visibility. The original system logged
// these rows into a shared SQL table for the building's ops dashboard; no
// SQL driver appears anywhere in the example pack this module was built
// from, so this adapter logs structured events through log/slog instead,
// matching the original's fire-and-forget semantics: a logging failure
// never blocks or fails the authorization flow that triggered it.
package eventlog

import "log/slog"

// Logger is the default auth.EventLogger implementation.
type Logger struct {
	log *slog.Logger
}

// New returns an event logger writing through log.
func New(log *slog.Logger) *Logger {
	return &Logger{log: log}
}

// LogEvent records a single authorization outcome.
func (l *Logger) LogEvent(eventType, message string) {
	l.log.Info("event", "type", eventType, "message", message)
}
