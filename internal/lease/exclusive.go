package lease

import (
	"context"
	"sync"

	"codeberg.org/mutker/periphcheck/internal/errors"
)

type exclusiveProvider struct {
	Provider

	mu   sync.Mutex
	held map[string]bool
}

// Exclusive wraps p so that a physical capability can be held by only one
// lease at a time across every slot sharing the returned provider.
func Exclusive(p Provider) Provider {
	return &exclusiveProvider{
		Provider: p,
		held:     make(map[string]bool),
	}
}

func (e *exclusiveProvider) Acquire(ctx context.Context, req Request) (Grant, error) {
	errFactory := errors.New()

	if req.DeviceID != "" && e.isHeld(req.DeviceID) {
		return nil, errFactory.WithData(ErrResourceBusy, req.DeviceID)
	}

	grant, err := e.Provider.Acquire(ctx, req)
	if err != nil {
		return nil, err
	}

	id := grant.Descriptor().ID

	e.mu.Lock()
	if e.held[id] {
		e.mu.Unlock()
		if rerr := e.Provider.Release(grant); rerr != nil {
			return nil, errors.Join(errFactory.WithData(ErrResourceBusy, id), rerr)
		}
		return nil, errFactory.WithData(ErrResourceBusy, id)
	}
	e.held[id] = true
	e.mu.Unlock()

	return grant, nil
}

func (e *exclusiveProvider) Release(grant Grant) error {
	e.mu.Lock()
	delete(e.held, grant.Descriptor().ID)
	e.mu.Unlock()

	return e.Provider.Release(grant)
}

func (e *exclusiveProvider) isHeld(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held[id]
}
