package gpu_test

import (
	"context"
	"sync"
	"testing"

	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/gpu"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	uuid string
	name string
	temp gpu.Temperature
}

func (d *fakeDevice) UUID() (string, error) { return d.uuid, nil }
func (d *fakeDevice) Name() (string, error) { return d.name, nil }
func (d *fakeDevice) Temperature() (gpu.Temperature, error) { return d.temp, nil }
func (d *fakeDevice) Utilization() (gpu.Utilization, error) { return gpu.Utilization{GPU: 40, Memory: 10}, nil }
func (d *fakeDevice) PowerUsage() (gpu.PowerUsage, error) { return 180, nil }

type fakeLibrary struct {
	mu      sync.Mutex
	devices []*fakeDevice
	refs    int
	initErr error
}

func (l *fakeLibrary) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initErr != nil {
		return l.initErr
	}
	l.refs++
	return nil
}

func (l *fakeLibrary) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refs > 0 {
		l.refs--
	}
	return nil
}

func (l *fakeLibrary) DeviceCount() (int, error) { return len(l.devices), nil }

func (l *fakeLibrary) DeviceByIndex(index int) (gpu.Device, error) {
	if index >= len(l.devices) {
		return nil, errors.New().New(gpu.ErrDeviceNotFound)
	}
	return l.devices[index], nil
}

func (l *fakeLibrary) DeviceByUUID(uuid string) (gpu.Device, error) {
	for _, d := range l.devices {
		if d.uuid == uuid {
			return d, nil
		}
	}
	return nil, errors.New().WithData(gpu.ErrDeviceNotFound, uuid)
}

func (l *fakeLibrary) Refs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refs
}

func newLibrary() *fakeLibrary {
	return &fakeLibrary{devices: []*fakeDevice{
		{uuid: "GPU-aaaa", name: "GeForce RTX 4070", temp: 48},
		{uuid: "GPU-bbbb", name: "GeForce RTX 3060", temp: 83},
	}}
}

func newProvider(t *testing.T, lib gpu.Library) *gpu.Provider {
	return gpu.NewProvider(lib, gpu.WithLockDir(t.TempDir()), gpu.WithLogger(logger.Nop()))
}

func TestEnumerate(t *testing.T) {
	lib := newLibrary()
	p := newProvider(t, lib)

	devices, err := p.Enumerate(context.Background(), gpu.Group)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, lease.Descriptor{ID: "GPU-bbbb", Label: "GeForce RTX 3060", Kind: lease.KindDevice, Group: gpu.Group}, devices[1])
	assert.Zero(t, lib.Refs())

	other, err := p.Enumerate(context.Background(), "videoinput")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAcquireRelease(t *testing.T) {
	lib := newLibrary()
	p := newProvider(t, lib)

	grant, err := p.Acquire(context.Background(), lease.Request{Group: gpu.Group, DeviceID: "GPU-bbbb"})
	require.NoError(t, err)
	assert.Equal(t, 1, lib.Refs())

	reader, ok := grant.(catalog.ThermalReader)
	require.True(t, ok)
	temp, err := reader.Temperature()
	require.NoError(t, err)
	assert.Equal(t, float64(83), temp)

	_, err = p.Acquire(context.Background(), lease.Request{Group: gpu.Group, DeviceID: "GPU-bbbb"})
	assert.True(t, errors.HasCode(err, errors.ErrResourceBusy))
	assert.Equal(t, 1, lib.Refs())

	require.NoError(t, p.Release(grant))
	assert.Zero(t, lib.Refs())

	grant, err = p.Acquire(context.Background(), lease.Request{Group: gpu.Group})
	require.NoError(t, err)
	assert.Equal(t, "GPU-aaaa", grant.Descriptor().ID)
	require.NoError(t, p.Release(grant))
}

func TestAcquireFailures(t *testing.T) {
	lib := newLibrary()
	p := newProvider(t, lib)

	_, err := p.Acquire(context.Background(), lease.Request{DeviceID: "GPU-zzzz"})
	assert.True(t, errors.HasCode(err, gpu.ErrDeviceNotFound))
	assert.Zero(t, lib.Refs())

	lib.initErr = errors.New().New(gpu.ErrInitFailed)
	_, err = p.Acquire(context.Background(), lease.Request{})
	assert.True(t, errors.HasCode(err, lease.ErrResourceUnavailable))
	assert.Contains(t, err.Error(), "NVIDIA driver")

	empty := newProvider(t, &fakeLibrary{})
	_, err = empty.Acquire(context.Background(), lease.Request{})
	assert.True(t, errors.HasCode(err, gpu.ErrDeviceNotFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newProvider(t, newLibrary()).Acquire(ctx, lease.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReleaseForeignGrant(t *testing.T) {
	p := newProvider(t, newLibrary())
	err := p.Release(fakeGrant{})
	assert.True(t, errors.HasCode(err, gpu.ErrForeignGrant))
}

type fakeGrant struct{}

func (fakeGrant) Descriptor() lease.Descriptor { return lease.Descriptor{} }
