// Package host provides the capabilities available from a plain terminal
// session: the host CPU and the keyboard behind the controlling terminal.
package host

import (
	"context"
	"fmt"
	"runtime"

	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/lockfile"
)

const ComputeID = "cpu"

// Compute leases the host CPU for stress runs. Only one process at a time
// may stress it.
type Compute struct {
	lockDir string
}

func NewCompute(lockDir string) *Compute {
	return &Compute{lockDir: lockDir}
}

func (c *Compute) Enumerate(_ context.Context, group string) ([]lease.Descriptor, error) {
	if group != "" && group != catalog.ComputeGroup {
		return nil, nil
	}

	return []lease.Descriptor{computeDescriptor()}, nil
}

func (c *Compute) Acquire(ctx context.Context, req lease.Request) (lease.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.DeviceID != "" && req.DeviceID != ComputeID {
		return nil, errors.New().WithData(errors.ErrResourceNotFound, req.DeviceID)
	}

	lock, err := lockfile.Claim(c.lockDir, ComputeID)
	if err != nil {
		return nil, err
	}

	return &computeGrant{desc: computeDescriptor(), lock: lock}, nil
}

func (c *Compute) Release(grant lease.Grant) error {
	g, ok := grant.(*computeGrant)
	if !ok {
		return errors.New().New(ErrForeignGrant)
	}

	return g.lock.Release()
}

type computeGrant struct {
	desc lease.Descriptor
	lock *lockfile.Lock
}

func (g *computeGrant) Descriptor() lease.Descriptor { return g.desc }

func computeDescriptor() lease.Descriptor {
	return lease.Descriptor{
		ID:    ComputeID,
		Label: fmt.Sprintf("%d logical CPUs (%s/%s)", runtime.NumCPU(), runtime.GOOS, runtime.GOARCH),
		Kind:  lease.KindClock,
		Group: catalog.ComputeGroup,
	}
}
