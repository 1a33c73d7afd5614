package devicetest

import (
	"sort"
	"sync"
	"time"

	"codeberg.org/mutker/periphcheck/internal/sampling"
)

// Clock is a sampling.Clock that only ticks when told to. Emit calls
// handlers synchronously on the caller's goroutine.
type Clock struct {
	mu       sync.Mutex
	now      time.Time
	next     sampling.Subscription
	handlers map[sampling.Subscription]sampling.Handler
	unsubs   int
}

func NewClock(start time.Time) *Clock {
	return &Clock{
		now:      start,
		handlers: make(map[sampling.Subscription]sampling.Handler),
	}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func (c *Clock) SubscribeTicks(handler sampling.Handler) (sampling.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	c.handlers[c.next] = handler

	return c.next, nil
}

func (c *Clock) Unsubscribe(sub sampling.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.handlers[sub]; ok {
		delete(c.handlers, sub)
		c.unsubs++
	}
}

// Emit delivers t to every subscriber. A zero At is stamped with Now.
func (c *Clock) Emit(t sampling.Tick) {
	c.mu.Lock()
	if t.At.IsZero() {
		t.At = c.now
	}
	subs := make([]sampling.Subscription, 0, len(c.handlers))
	for sub := range c.handlers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
	handlers := make([]sampling.Handler, 0, len(subs))
	for _, sub := range subs {
		handlers = append(handlers, c.handlers[sub])
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(t)
	}
}

// Value advances the clock by step and emits a value tick for device.
func (c *Clock) Value(device string, v float64, step time.Duration) {
	at := c.Advance(step)
	c.Emit(sampling.Tick{At: at, Device: device, Value: v})
}

// Symbol advances the clock by step and emits a symbolic tick for device.
func (c *Clock) Symbol(device, symbol string, step time.Duration) {
	at := c.Advance(step)
	c.Emit(sampling.Tick{At: at, Device: device, Symbol: symbol})
}

// Subscribers returns the number of live subscriptions.
func (c *Clock) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

// Unsubscribes returns how many subscriptions have been removed.
func (c *Clock) Unsubscribes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubs
}
