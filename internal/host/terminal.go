package host

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"codeberg.org/mutker/periphcheck/internal/sampling"
	"golang.org/x/term"
)

const TerminalID = "tty"

// Input is the terminal the keyboard is read from, usually os.Stdin.
type Input interface {
	io.Reader
	Fd() uintptr
}

// Terminal is the keyboard behind a terminal. It is both the capability
// provider and the clock of a keyboard run: holding the lease puts the
// terminal in raw mode, and every key pressed while it is held is delivered
// as a tick whose symbol is the key name.
type Terminal struct {
	in          Input
	logger      logger.Logger
	onInterrupt func()

	mu       sync.Mutex
	held     bool
	state    *term.State
	reading  bool
	next     sampling.Subscription
	handlers map[sampling.Subscription]sampling.Handler
}

type TerminalOption func(*Terminal)

// OnInterrupt is called when Ctrl-C is read; raw mode keeps the terminal
// from raising SIGINT itself.
func OnInterrupt(fn func()) TerminalOption {
	return func(t *Terminal) {
		t.onInterrupt = fn
	}
}

func WithTerminalLogger(log logger.Logger) TerminalOption {
	return func(t *Terminal) {
		t.logger = log
	}
}

func NewTerminal(in Input, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		in:       in,
		handlers: make(map[sampling.Subscription]sampling.Handler),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.logger == nil {
		t.logger = logger.Default()
	}
	t.logger = t.logger.With("terminal")

	return t
}

func (t *Terminal) Enumerate(_ context.Context, group string) ([]lease.Descriptor, error) {
	if group != "" && group != catalog.KeyboardGroup {
		return nil, nil
	}

	return []lease.Descriptor{t.descriptor()}, nil
}

// Acquire switches the terminal to raw mode. Input that is not a terminal,
// such as a pipe, is read as is.
func (t *Terminal) Acquire(ctx context.Context, req lease.Request) (lease.Grant, error) {
	errFactory := errors.New()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.DeviceID != "" && req.DeviceID != TerminalID {
		return nil, errFactory.WithData(errors.ErrResourceNotFound, req.DeviceID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.held {
		return nil, errFactory.WithData(errors.ErrResourceBusy, TerminalID)
	}

	fd := int(t.in.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, errFactory.Wrap(ErrRawMode, err)
		}
		t.state = state
	}

	t.held = true
	if !t.reading {
		t.reading = true
		go t.read()
	}

	return &terminalGrant{desc: t.descriptor()}, nil
}

// Release restores the terminal mode saved by Acquire.
func (t *Terminal) Release(grant lease.Grant) error {
	if _, ok := grant.(*terminalGrant); !ok {
		return errors.New().New(ErrForeignGrant)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.held = false
	if t.state == nil {
		return nil
	}

	state := t.state
	t.state = nil
	if err := term.Restore(int(t.in.Fd()), state); err != nil {
		return errors.New().Wrap(ErrRawMode, err)
	}

	return nil
}

func (t *Terminal) SubscribeTicks(handler sampling.Handler) (sampling.Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.handlers[t.next] = handler

	return t.next, nil
}

func (t *Terminal) Unsubscribe(sub sampling.Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.handlers, sub)
}

// read runs for the life of the process; a blocked read on a terminal
// cannot be interrupted portably. Keys read while the lease is not held
// are discarded.
func (t *Terminal) read() {
	buf := make([]byte, 64)

	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			keys, interrupted := DecodeKeys(buf[:n])
			for _, key := range keys {
				t.emit(sampling.Tick{At: time.Now(), Device: TerminalID, Symbol: key})
			}
			if interrupted && t.onInterrupt != nil {
				t.onInterrupt()
			}
		}

		if err != nil {
			t.logger.Debug().Err(err).Msg("Terminal input closed")
			t.emit(sampling.Tick{At: time.Now(), Device: TerminalID, Err: errors.New().Wrap(ErrInputClosed, err)})

			t.mu.Lock()
			t.reading = false
			t.mu.Unlock()
			return
		}
	}
}

func (t *Terminal) emit(tick sampling.Tick) {
	t.mu.Lock()
	if !t.held {
		t.mu.Unlock()
		return
	}

	subs := make([]sampling.Subscription, 0, len(t.handlers))
	for sub := range t.handlers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })

	handlers := make([]sampling.Handler, 0, len(subs))
	for _, sub := range subs {
		handlers = append(handlers, t.handlers[sub])
	}
	t.mu.Unlock()

	for _, h := range handlers {
		h(tick)
	}
}

func (t *Terminal) descriptor() lease.Descriptor {
	return lease.Descriptor{ID: TerminalID, Label: "Terminal keyboard", Kind: lease.KindFocus, Group: catalog.KeyboardGroup}
}

type terminalGrant struct {
	desc lease.Descriptor
}

func (g *terminalGrant) Descriptor() lease.Descriptor { return g.desc }
