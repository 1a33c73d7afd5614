package lease

import "context"

//go:generate mockgen -source=interface.go -destination=leasemock/provider.go -package=leasemock

// Provider supplies exclusive use of external capabilities. Implementations
// are the host collaborators that actually talk to devices.
type Provider interface {
	// Enumerate lists the capabilities in group. An empty group lists all.
	Enumerate(ctx context.Context, group string) ([]Descriptor, error)

	// Acquire grants exclusive use of the capability described by req. It may
	// block on an external permission gate until ctx is done.
	Acquire(ctx context.Context, req Request) (Grant, error)

	// Release gives the capability behind grant back.
	Release(grant Grant) error
}

// Grant is the provider-side handle of an acquired capability.
type Grant interface {
	Descriptor() Descriptor
}

// Kind classifies what a capability is.
type Kind string

const (
	KindDevice Kind = "device"
	KindClock  Kind = "clock"
	KindFocus  Kind = "focus"
)

// Descriptor identifies one physical capability.
type Descriptor struct {
	ID    string
	Label string
	Kind  Kind
	Group string
}

// Request describes the capability a diagnostic wants. An empty DeviceID
// lets the provider pick its default device in Group.
type Request struct {
	Kind     Kind
	Group    string
	DeviceID string
	Params   map[string]string
}

// WithDevice returns a copy of r targeting id.
func (r Request) WithDevice(id string) Request {
	r.DeviceID = id
	if r.Params != nil {
		params := make(map[string]string, len(r.Params))
		for k, v := range r.Params {
			params[k] = v
		}
		r.Params = params
	}

	return r
}
