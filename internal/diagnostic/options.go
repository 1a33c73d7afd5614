package diagnostic

import (
	"time"

	"codeberg.org/mutker/periphcheck/internal/history"
	"codeberg.org/mutker/periphcheck/internal/logger"
)

type Option func(*Machine)

// WithHistory shares log between machines of one session.
func WithHistory(log *history.Log) Option {
	return func(m *Machine) {
		m.history = log
	}
}

func WithLogger(log logger.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// WithNow replaces the wall clock used for run start and finish times.
func WithNow(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithDevice preselects the device the first Start requests.
func WithDevice(id string) Option {
	return func(m *Machine) {
		m.device = id
	}
}
