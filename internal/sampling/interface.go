package sampling

import "time"

// Clock delivers ticks to subscribed handlers at its own cadence: once per
// rendered frame, once per interval, or once per device event.
type Clock interface {
	SubscribeTicks(handler Handler) (Subscription, error)
	Unsubscribe(sub Subscription)
}

// Handler receives one tick. Clocks call it from a single goroutine per
// subscription.
type Handler func(Tick)

// Subscription identifies one SubscribeTicks registration.
type Subscription uint64

// Tick is one raw signal from a clock. Device is set by device-backed clocks
// so consumers can discard ticks from a device they no longer hold. A tick
// with Err set reports that the source failed.
type Tick struct {
	At     time.Time
	Device string
	Value  float64
	Symbol string
	Err    error
}

// TickFunc consumes a tick and the time elapsed since the loop started.
// It runs on the clock's goroutine and must not block on I/O.
type TickFunc func(tick Tick, elapsed time.Duration)

// nower is implemented by clocks with their own notion of now.
type nower interface {
	Now() time.Time
}
