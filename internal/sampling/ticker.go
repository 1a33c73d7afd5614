package sampling

import (
	"sync"
	"time"

	"codeberg.org/mutker/periphcheck/internal/errors"
)

// FrameInterval approximates one rendered frame at 60Hz.
const FrameInterval = time.Second / 60

// Ticker is a Clock firing at a fixed wall-clock interval. A slow handler
// delays its own next tick; missed ticks are skipped, not queued.
type Ticker struct {
	interval time.Duration

	mu     sync.Mutex
	next   Subscription
	subs   map[Subscription]chan struct{}
	closed bool
}

func NewTicker(interval time.Duration) (*Ticker, error) {
	if interval <= 0 {
		return nil, errors.New().WithData(ErrInvalidInterval, interval.String())
	}

	return &Ticker{
		interval: interval,
		subs:     make(map[Subscription]chan struct{}),
	}, nil
}

// NewFrameTicker returns a Ticker firing once per display frame.
func NewFrameTicker() *Ticker {
	t, _ := NewTicker(FrameInterval)
	return t
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

func (t *Ticker) SubscribeTicks(handler Handler) (Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, errors.New().New(ErrClockClosed)
	}

	t.next++
	sub := t.next
	done := make(chan struct{})
	t.subs[sub] = done

	go t.run(handler, done)

	return sub, nil
}

func (t *Ticker) Unsubscribe(sub Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if done, ok := t.subs[sub]; ok {
		close(done)
		delete(t.subs, sub)
	}
}

// Close stops every subscription and rejects new ones.
func (t *Ticker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sub, done := range t.subs {
		close(done)
		delete(t.subs, sub)
	}
	t.closed = true
}

func (t *Ticker) run(handler Handler, done <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case at := <-ticker.C:
			select {
			case <-done:
				return
			default:
			}
			handler(Tick{At: at})
		}
	}
}
