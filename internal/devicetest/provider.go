// Package devicetest provides an in-memory capability provider and a manual
// clock for exercising diagnostics without hardware.
package devicetest

import (
	"context"
	"sync"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
)

// Grant is the handle returned by Provider.
type Grant struct {
	desc lease.Descriptor
}

func (g *Grant) Descriptor() lease.Descriptor { return g.desc }

// Provider is a lease.Provider over a fixed device list. It records every
// acquire and release so tests can check lease accounting.
type Provider struct {
	mu       sync.Mutex
	devices  []lease.Descriptor
	denied   map[string]error
	gates    map[string]chan struct{}
	held     map[string]int
	acquires int
	releases int
	events   []string
}

func NewProvider(devices ...lease.Descriptor) *Provider {
	return &Provider{
		devices: devices,
		denied:  make(map[string]error),
		gates:   make(map[string]chan struct{}),
		held:    make(map[string]int),
	}
}

// Deny makes acquisitions of id fail with err. A nil err lifts the denial.
func (p *Provider) Deny(id string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		delete(p.denied, id)
		return
	}
	p.denied[id] = err
}

// Block makes acquisitions of id wait until the returned func is called,
// as a permission prompt would.
func (p *Provider) Block(id string) (resolve func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gate := make(chan struct{})
	p.gates[id] = gate

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.gates, id)
			p.mu.Unlock()
			close(gate)
		})
	}
}

func (p *Provider) Enumerate(_ context.Context, group string) ([]lease.Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]lease.Descriptor, 0, len(p.devices))
	for _, d := range p.devices {
		if group == "" || d.Group == group {
			out = append(out, d)
		}
	}

	return out, nil
}

func (p *Provider) Acquire(ctx context.Context, req lease.Request) (lease.Grant, error) {
	errFactory := errors.New()

	p.mu.Lock()
	desc, ok := p.lookup(req)
	if !ok {
		p.mu.Unlock()
		return nil, errFactory.WithData(errors.ErrResourceNotFound, req.DeviceID)
	}
	if err := p.denied[desc.ID]; err != nil {
		p.mu.Unlock()
		return nil, err
	}
	gate := p.gates[desc.ID]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.acquires++
	p.held[desc.ID]++
	p.events = append(p.events, "acquire:"+desc.ID)

	return &Grant{desc: desc}, nil
}

func (p *Provider) Release(grant lease.Grant) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := grant.Descriptor().ID
	p.releases++
	p.held[id]--
	if p.held[id] <= 0 {
		delete(p.held, id)
	}
	p.events = append(p.events, "release:"+id)

	return nil
}

// Acquires returns the number of successful acquisitions.
func (p *Provider) Acquires() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquires
}

// Releases returns the number of releases.
func (p *Provider) Releases() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.releases
}

// Held returns how many live grants exist for id.
func (p *Provider) Held(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.held[id]
}

// Events returns the acquire/release log in order.
func (p *Provider) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *Provider) lookup(req lease.Request) (lease.Descriptor, bool) {
	for _, d := range p.devices {
		if req.Group != "" && d.Group != req.Group {
			continue
		}
		if req.DeviceID == "" || d.ID == req.DeviceID {
			return d, true
		}
	}

	return lease.Descriptor{}, false
}
