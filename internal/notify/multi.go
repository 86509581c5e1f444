package notify

import "example.com/schedule/internal/schedule"

// Multi fans a notification out to several notifiers.
type Multi struct {
	notifiers []schedule.Notifier
}

// NewMulti combines the given notifiers.
func NewMulti(notifiers ...schedule.Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Success forwards to every notifier.
func (m *Multi) Success(message string) {
	for _, n := range m.notifiers {
		n.Success(message)
	}
}

// Error forwards to every notifier.
func (m *Multi) Error(message string) {
	for _, n := range m.notifiers {
		n.Error(message)
	}
}
