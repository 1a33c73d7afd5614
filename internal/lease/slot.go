package lease

import (
	"context"
	"sync"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/logger"
)

// Slot holds at most one live lease. Acquiring into a slot releases the
// lease it already holds before asking for the new one, and a pending
// acquisition superseded by Acquire or Release is released as soon as it
// resolves.
type Slot struct {
	provider Provider
	logger   logger.Logger

	mu      sync.Mutex
	current *Lease
	gen     uint64
	pending int
}

func NewSlot(p Provider, log logger.Logger) *Slot {
	if log == nil {
		log = logger.Nop()
	}

	return &Slot{
		provider: p,
		logger:   log,
	}
}

// Acquire releases the held lease, then acquires req. It returns
// ErrAcquisitionRace when another Acquire or Release ran while it waited.
func (s *Slot) Acquire(ctx context.Context, req Request) (*Lease, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	old := s.current
	s.current = nil
	s.pending++
	s.mu.Unlock()

	if err := old.Release(); err != nil {
		s.logger.Warn().Err(err).Str("device", old.Device().ID).Msg("Failed to release previous device")
	}

	l, err := Acquire(ctx, s.provider, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if gen != s.gen {
		if rerr := l.Release(); rerr != nil {
			s.logger.Warn().Err(rerr).Msg("Failed to release superseded device")
		}
		s.logger.Debug().Str("device", req.DeviceID).Msg("Discarded superseded device request")
		return nil, errors.New().New(ErrAcquisitionRace)
	}

	if err != nil {
		return nil, err
	}

	s.current = l

	return l, nil
}

// Release releases the held lease and cancels any pending acquisition.
func (s *Slot) Release() error {
	s.mu.Lock()
	s.gen++
	l := s.current
	s.current = nil
	s.mu.Unlock()

	return l.Release()
}

// Current returns the live lease, or nil.
func (s *Slot) Current() *Lease {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending reports whether an acquisition is in flight.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Drop releases l and empties the slot if l is still its live lease.
func (s *Slot) Drop(l *Lease) error {
	s.mu.Lock()
	if s.current == l {
		s.current = nil
	}
	s.mu.Unlock()

	return l.Release()
}
