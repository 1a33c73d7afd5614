// Package history keeps a bounded, newest-first log of finished runs.
package history

import (
	"sync"
	"time"
)

// DefaultCapacity is how many summaries a log keeps unless told otherwise.
const DefaultCapacity = 5

// LabelLayout formats the wall-clock label of a summary.
const LabelLayout = "15:04:05"

// CriterionResult is the final state of one sub-criterion.
type CriterionResult struct {
	Name      string `json:"name" yaml:"name"`
	Count     int    `json:"count" yaml:"count"`
	Target    int    `json:"target" yaml:"target"`
	Satisfied bool   `json:"satisfied" yaml:"satisfied"`
}

// Summary is an immutable snapshot of a finished run.
type Summary struct {
	Label      string            `json:"label" yaml:"label"`
	Diagnostic string            `json:"diagnostic" yaml:"diagnostic"`
	Device     string            `json:"device" yaml:"device"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
	Duration   time.Duration     `json:"duration" yaml:"duration"`
	Samples    uint64            `json:"samples" yaml:"samples"`
	Last       float64           `json:"last" yaml:"last"`
	Best       float64           `json:"best" yaml:"best"`
	Worst      float64           `json:"worst" yaml:"worst"`
	Average    float64           `json:"average" yaml:"average"`
	Verdict    string            `json:"verdict" yaml:"verdict"`
	Completed  bool              `json:"completed" yaml:"completed"`
	Criteria   []CriterionResult `json:"criteria,omitempty" yaml:"criteria,omitempty"`
}

func (s Summary) clone() Summary {
	if s.Criteria != nil {
		s.Criteria = append([]CriterionResult(nil), s.Criteria...)
	}
	return s
}

// Log is a fixed-capacity ring of summaries, newest first.
type Log struct {
	mu       sync.RWMutex
	capacity int
	entries  []Summary
}

// NewLog returns a log holding up to capacity summaries. A non-positive
// capacity means DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Log{
		capacity: capacity,
		entries:  make([]Summary, 0, capacity),
	}
}

// Append inserts s at the front, evicting the oldest entry when full.
func (l *Log) Append(s Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, Summary{})
	}
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = s.clone()
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Summary, len(l.entries))
	for i, s := range l.entries {
		out[i] = s.clone()
	}

	return out
}

// Latest returns the newest summary.
func (l *Log) Latest() (Summary, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return Summary{}, false
	}

	return l.entries[0].clone(), true
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Log) Capacity() int {
	return l.capacity
}
