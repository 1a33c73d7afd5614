package lease_test

import (
	"context"
	stderrors "errors"
	"testing"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/lease/leasemock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type grant struct {
	desc lease.Descriptor
}

func (g grant) Descriptor() lease.Descriptor { return g.desc }

var micReq = lease.Request{Kind: lease.KindDevice, Group: "audioinput", DeviceID: "mic-1"}

func TestAcquireRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := leasemock.NewMockProvider(ctrl)
	g := grant{desc: lease.Descriptor{ID: "mic-1", Group: "audioinput"}}

	provider.EXPECT().Acquire(gomock.Any(), micReq).Return(g, nil)
	provider.EXPECT().Release(g).Return(nil).Times(1)

	l, err := lease.Acquire(context.Background(), provider, micReq)
	require.NoError(t, err)
	assert.Equal(t, "mic-1", l.Device().ID)
	assert.False(t, l.Released())
	assert.False(t, l.AcquiredAt().IsZero())

	require.NoError(t, l.Release())
	require.NoError(t, l.Release())
	assert.True(t, l.Released())
}

func TestReleaseNilLease(t *testing.T) {
	var l *lease.Lease
	assert.NoError(t, l.Release())
	assert.True(t, l.Released())
	assert.Equal(t, lease.Descriptor{}, l.Device())
	assert.Nil(t, l.Grant())
}

func TestReleaseErrorReportedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := leasemock.NewMockProvider(ctrl)
	g := grant{desc: lease.Descriptor{ID: "mic-1"}}

	provider.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(g, nil)
	provider.EXPECT().Release(g).Return(stderrors.New("track already stopped"))

	l, err := lease.Acquire(context.Background(), provider, micReq)
	require.NoError(t, err)

	err = l.Release()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, lease.ErrReleaseFailed))
	assert.NoError(t, l.Release())
}

func TestAcquireFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := leasemock.NewMockProvider(ctrl)

	provider.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(nil, stderrors.New("permission denied"))
	_, err := lease.Acquire(context.Background(), provider, micReq)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, lease.ErrResourceUnavailable))
	assert.Contains(t, err.Error(), "permission denied")

	provider.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = lease.Acquire(context.Background(), provider, micReq)
	assert.True(t, errors.HasCode(err, lease.ErrNoGrant))

	_, err = lease.Acquire(context.Background(), nil, micReq)
	assert.True(t, errors.HasCode(err, lease.ErrResourceUnavailable))
	assert.True(t, errors.HasCode(err, lease.ErrNoProvider))
	assert.Contains(t, err.Error(), "not supported in this environment")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lease.Acquire(ctx, provider, micReq)
	assert.True(t, errors.HasCode(err, lease.ErrResourceUnavailable))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithDeviceCopiesParams(t *testing.T) {
	req := lease.Request{Group: "videoinput", Params: map[string]string{"width": "1280"}}
	other := req.WithDevice("cam-2")
	other.Params["width"] = "640"

	assert.Equal(t, "cam-2", other.DeviceID)
	assert.Equal(t, "", req.DeviceID)
	assert.Equal(t, "1280", req.Params["width"])
}
