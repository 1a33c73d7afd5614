package lease_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/periphcheck/internal/devicetest"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cameras() *devicetest.Provider {
	return devicetest.NewProvider(
		lease.Descriptor{ID: "cam-1", Group: "videoinput", Kind: lease.KindDevice},
		lease.Descriptor{ID: "cam-2", Group: "videoinput", Kind: lease.KindDevice},
	)
}

func TestSlotSwitchReleasesFirst(t *testing.T) {
	provider := cameras()
	slot := lease.NewSlot(provider, logger.Nop())
	req := lease.Request{Group: "videoinput"}

	first, err := slot.Acquire(context.Background(), req.WithDevice("cam-1"))
	require.NoError(t, err)
	assert.Equal(t, "cam-1", first.Device().ID)

	second, err := slot.Acquire(context.Background(), req.WithDevice("cam-2"))
	require.NoError(t, err)

	assert.True(t, first.Released())
	assert.Same(t, second, slot.Current())
	assert.Equal(t, []string{"acquire:cam-1", "release:cam-1", "acquire:cam-2"}, provider.Events())

	require.NoError(t, slot.Release())
	require.NoError(t, slot.Release())
	assert.Nil(t, slot.Current())
	assert.Equal(t, provider.Acquires(), provider.Releases())
}

func TestSlotDefaultDevice(t *testing.T) {
	slot := lease.NewSlot(cameras(), nil)

	l, err := slot.Acquire(context.Background(), lease.Request{Group: "videoinput"})
	require.NoError(t, err)
	assert.Equal(t, "cam-1", l.Device().ID)
}

func TestSlotReleaseCancelsPending(t *testing.T) {
	provider := cameras()
	resolve := provider.Block("cam-1")
	slot := lease.NewSlot(provider, logger.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := slot.Acquire(context.Background(), lease.Request{DeviceID: "cam-1"})
		done <- err
	}()

	require.Eventually(t, slot.Pending, time.Second, time.Millisecond)
	require.NoError(t, slot.Release())
	resolve()

	err := <-done
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, lease.ErrAcquisitionRace))
	assert.Nil(t, slot.Current())
	assert.False(t, slot.Pending())
	assert.Equal(t, 1, provider.Acquires())
	assert.Equal(t, 1, provider.Releases())
	assert.Equal(t, 0, provider.Held("cam-1"))
}

func TestSlotSupersededAcquisition(t *testing.T) {
	provider := cameras()
	resolve := provider.Block("cam-1")
	slot := lease.NewSlot(provider, logger.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := slot.Acquire(context.Background(), lease.Request{DeviceID: "cam-1"})
		done <- err
	}()
	require.Eventually(t, slot.Pending, time.Second, time.Millisecond)

	l, err := slot.Acquire(context.Background(), lease.Request{DeviceID: "cam-2"})
	require.NoError(t, err)
	resolve()

	assert.True(t, errors.HasCode(<-done, lease.ErrAcquisitionRace))
	assert.Same(t, l, slot.Current())
	assert.Equal(t, 0, provider.Held("cam-1"))
	assert.Equal(t, 1, provider.Held("cam-2"))
}

func TestSlotAcquireFailure(t *testing.T) {
	provider := cameras()
	provider.Deny("cam-2", errors.New().WithMessage(errors.ErrResourceUnavailable, "permission denied"))
	slot := lease.NewSlot(provider, logger.Nop())

	_, err := slot.Acquire(context.Background(), lease.Request{DeviceID: "cam-1"})
	require.NoError(t, err)

	_, err = slot.Acquire(context.Background(), lease.Request{DeviceID: "cam-2"})
	require.Error(t, err)
	assert.Equal(t, "permission denied", err.Error())
	assert.Nil(t, slot.Current())
	assert.Equal(t, provider.Acquires(), provider.Releases())

	_, err = slot.Acquire(context.Background(), lease.Request{DeviceID: "cam-9"})
	assert.True(t, errors.HasCode(err, lease.ErrResourceUnavailable))
	assert.True(t, errors.HasCode(err, errors.ErrResourceNotFound))
}

func TestExclusive(t *testing.T) {
	provider := cameras()
	shared := lease.Exclusive(provider)
	a := lease.NewSlot(shared, logger.Nop())
	b := lease.NewSlot(shared, logger.Nop())

	_, err := a.Acquire(context.Background(), lease.Request{DeviceID: "cam-1"})
	require.NoError(t, err)

	_, err = b.Acquire(context.Background(), lease.Request{DeviceID: "cam-1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, lease.ErrResourceBusy))

	// The default device resolves to the held camera, so the grant is handed back.
	_, err = b.Acquire(context.Background(), lease.Request{Group: "videoinput"})
	assert.True(t, errors.HasCode(err, lease.ErrResourceBusy))
	assert.Equal(t, 1, provider.Held("cam-1"))

	require.NoError(t, a.Release())
	_, err = b.Acquire(context.Background(), lease.Request{DeviceID: "cam-1"})
	require.NoError(t, err)

	devices, err := shared.Enumerate(context.Background(), "videoinput")
	require.NoError(t, err)
	assert.Len(t, devices, 2)
}
