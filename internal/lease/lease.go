// Package lease acquires external capabilities and guarantees each one is
// released exactly once.
package lease

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/periphcheck/internal/errors"
)

// Lease is exclusive, time-bounded use of one capability.
type Lease struct {
	provider   Provider
	grant      Grant
	acquiredAt time.Time

	once     sync.Once
	mu       sync.Mutex
	released bool
}

// Acquire requests the capability described by req from p. Every failure,
// including a nil provider, surfaces as ErrResourceUnavailable.
func Acquire(ctx context.Context, p Provider, req Request) (*Lease, error) {
	errFactory := errors.New()

	if p == nil {
		return nil, errFactory.Wrap(ErrResourceUnavailable, errFactory.New(ErrNoProvider)).
			WithMessage("Capability is not supported in this environment")
	}

	if err := ctx.Err(); err != nil {
		return nil, errFactory.Wrap(ErrResourceUnavailable, err)
	}

	grant, err := p.Acquire(ctx, req)
	if err != nil {
		if errors.HasCode(err, ErrResourceUnavailable) {
			return nil, err
		}
		return nil, errFactory.Wrap(ErrResourceUnavailable, err)
	}

	if grant == nil {
		return nil, errFactory.Wrap(ErrResourceUnavailable, errFactory.New(ErrNoGrant))
	}

	return &Lease{
		provider:   p,
		grant:      grant,
		acquiredAt: time.Now(),
	}, nil
}

// Release gives the capability back. Only the first call reaches the
// provider; later calls and calls on a nil lease are no-ops.
func (l *Lease) Release() error {
	if l == nil {
		return nil
	}

	var err error
	l.once.Do(func() {
		l.mu.Lock()
		l.released = true
		l.mu.Unlock()

		if rerr := l.provider.Release(l.grant); rerr != nil {
			err = errors.New().Wrap(ErrReleaseFailed, rerr)
		}
	})

	return err
}

// Released reports whether Release has been called.
func (l *Lease) Released() bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}

// Device returns the descriptor of the leased capability.
func (l *Lease) Device() Descriptor {
	if l == nil {
		return Descriptor{}
	}
	return l.grant.Descriptor()
}

// Grant returns the provider handle so measure functions can read from it.
func (l *Lease) Grant() Grant {
	if l == nil {
		return nil
	}
	return l.grant
}

// AcquiredAt returns when the lease was granted.
func (l *Lease) AcquiredAt() time.Time {
	if l == nil {
		return time.Time{}
	}
	return l.acquiredAt
}
