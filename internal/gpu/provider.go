// Package gpu exposes NVIDIA GPUs as leasable capabilities.
package gpu

import (
	"context"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/lockfile"
	"codeberg.org/mutker/periphcheck/internal/logger"
)

// Group is the capability group GPUs are listed under.
const Group = "gpu"

// Provider leases GPUs. Each live grant holds one NVML reference and a
// cross-process claim on its device.
type Provider struct {
	lib     Library
	lockDir string
	logger  logger.Logger
}

type Option func(*Provider)

// WithLockDir places pid file claims under dir.
func WithLockDir(dir string) Option {
	return func(p *Provider) {
		p.lockDir = dir
	}
}

func WithLogger(log logger.Logger) Option {
	return func(p *Provider) {
		p.logger = log
	}
}

func NewProvider(lib Library, opts ...Option) *Provider {
	p := &Provider{lib: lib}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.Default()
	}
	p.logger = p.logger.With("gpu")

	return p
}

func (p *Provider) Enumerate(_ context.Context, group string) ([]lease.Descriptor, error) {
	if group != "" && group != Group {
		return nil, nil
	}

	if err := p.lib.Init(); err != nil {
		return nil, err
	}
	defer p.shutdown()

	count, err := p.lib.DeviceCount()
	if err != nil {
		return nil, err
	}

	descriptors := make([]lease.Descriptor, 0, count)
	for i := 0; i < count; i++ {
		device, err := p.lib.DeviceByIndex(i)
		if err != nil {
			return nil, err
		}

		desc, err := describe(device)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, desc)
	}

	return descriptors, nil
}

// Acquire opens the GPU named by req.DeviceID, or the first GPU when it is
// empty.
func (p *Provider) Acquire(ctx context.Context, req lease.Request) (lease.Grant, error) {
	errFactory := errors.New()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.lib.Init(); err != nil {
		return nil, errFactory.Wrap(lease.ErrResourceUnavailable, err).
			WithMessage("NVIDIA driver is not available")
	}

	device, err := p.open(req.DeviceID)
	if err != nil {
		p.shutdown()
		return nil, err
	}

	desc, err := describe(device)
	if err != nil {
		p.shutdown()
		return nil, err
	}

	lock, err := lockfile.Claim(p.lockDir, "gpu-"+desc.ID)
	if err != nil {
		p.shutdown()
		return nil, err
	}

	if name, err := device.Name(); err == nil {
		p.logger.Info().Str("device", desc.ID).Msgf("Detected GPU: %v", name)
	}

	return &Grant{desc: desc, device: device, lock: lock}, nil
}

func (p *Provider) Release(grant lease.Grant) error {
	g, ok := grant.(*Grant)
	if !ok {
		return errors.New().New(ErrForeignGrant)
	}

	lockErr := g.lock.Release()
	shutdownErr := p.lib.Shutdown()

	return errors.Join(lockErr, shutdownErr)
}

func (p *Provider) open(uuid string) (Device, error) {
	if uuid != "" {
		return p.lib.DeviceByUUID(uuid)
	}

	count, err := p.lib.DeviceCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errors.New().New(ErrDeviceNotFound)
	}

	return p.lib.DeviceByIndex(0)
}

func (p *Provider) shutdown() {
	if err := p.lib.Shutdown(); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to shut down NVML")
	}
}

func describe(device Device) (lease.Descriptor, error) {
	uuid, err := device.UUID()
	if err != nil {
		return lease.Descriptor{}, err
	}

	name, err := device.Name()
	if err != nil {
		name = uuid
	}

	return lease.Descriptor{ID: uuid, Label: name, Kind: lease.KindDevice, Group: Group}, nil
}

// Grant is a leased GPU.
type Grant struct {
	desc   lease.Descriptor
	device Device
	lock   *lockfile.Lock
}

func (g *Grant) Descriptor() lease.Descriptor { return g.desc }

// Temperature reads the core temperature in degrees Celsius.
func (g *Grant) Temperature() (float64, error) {
	temp, err := g.device.Temperature()
	if err != nil {
		return 0, err
	}

	return float64(temp), nil
}

func (g *Grant) Utilization() (Utilization, error) {
	return g.device.Utilization()
}

func (g *Grant) PowerUsage() (PowerUsage, error) {
	return g.device.PowerUsage()
}
