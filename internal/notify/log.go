// Package notify delivers user-facing mutation outcomes. Implementations are
// fire-and-forget: the schedule core never consumes a return value from them.
package notify

import "log/slog"

// Log emits notifications and navigation effects to the structured log.
type Log struct {
	logger *slog.Logger
}

// NewLog constructs a Log notifier.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Success records a success notification.
func (l *Log) Success(message string) {
	l.logger.Info("notification", "level", "success", "message", message)
}

// Error records an error notification.
func (l *Log) Error(message string) {
	l.logger.Warn("notification", "level", "error", "message", message)
}

// NavigateTo records a navigation effect.
func (l *Log) NavigateTo(path string) {
	l.logger.Debug("navigation", "path", path)
}
