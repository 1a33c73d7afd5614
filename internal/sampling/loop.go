// Package sampling drives repeated measurement at the cadence of an
// external clock.
package sampling

import (
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/periphcheck/internal/errors"
)

// Handle is a running loop. Its only control is Stop.
type Handle struct {
	clock Clock
	fn    TickFunc
	start time.Time

	stopped atomic.Bool

	// deliverMu serialises delivery; Stop never takes it so a tick
	// function may stop its own loop.
	deliverMu sync.Mutex
	last      time.Time
	delivered uint64
	dropped   uint64

	subMu      sync.Mutex
	sub        Subscription
	subscribed bool
}

// Start subscribes fn to clock. Ticks are delivered one at a time in
// chronological order; a tick older than the last delivered one is dropped.
func Start(clock Clock, fn TickFunc) (*Handle, error) {
	errFactory := errors.New()

	if clock == nil {
		return nil, errFactory.New(ErrNoClock)
	}

	h := &Handle{
		clock: clock,
		fn:    fn,
		start: now(clock),
	}

	sub, err := clock.SubscribeTicks(h.deliver)
	if err != nil {
		return nil, errFactory.Wrap(ErrSubscribeFailed, err)
	}

	h.subMu.Lock()
	h.sub = sub
	h.subscribed = true
	h.subMu.Unlock()

	// Stop may have run from inside a tick delivered during subscribe.
	if h.stopped.Load() {
		h.unsubscribe()
	}

	return h, nil
}

// Stop halts the loop. No tick starts after Stop returns; a tick already
// executing is allowed to finish. Stop is idempotent and nil-safe.
func (h *Handle) Stop() {
	if h == nil {
		return
	}

	if h.stopped.Swap(true) {
		return
	}

	h.unsubscribe()
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	return h == nil || h.stopped.Load()
}

// Delivered returns how many ticks reached the tick function.
func (h *Handle) Delivered() uint64 {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	return h.delivered
}

// Dropped returns how many out-of-order ticks were discarded.
func (h *Handle) Dropped() uint64 {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	return h.dropped
}

func (h *Handle) deliver(t Tick) {
	if h.stopped.Load() {
		return
	}

	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	if h.stopped.Load() {
		return
	}

	if t.At.IsZero() {
		t.At = now(h.clock)
	}

	if !h.last.IsZero() && t.At.Before(h.last) {
		h.dropped++
		return
	}

	h.last = t.At
	h.delivered++

	elapsed := t.At.Sub(h.start)
	if elapsed < 0 {
		elapsed = 0
	}

	h.fn(t, elapsed)
}

func (h *Handle) unsubscribe() {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	if !h.subscribed {
		return
	}
	h.subscribed = false
	h.clock.Unsubscribe(h.sub)
}

func now(clock Clock) time.Time {
	if n, ok := clock.(nower); ok {
		return n.Now()
	}

	return time.Now()
}
