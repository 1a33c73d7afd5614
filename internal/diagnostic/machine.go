// Package diagnostic runs one peripheral test. A Machine leases the device,
// samples it on a clock, folds every sample into aggregates and criteria,
// and records each finished run in a history log.
package diagnostic

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/history"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

// Machine is the lifecycle of one diagnostic. All methods are safe for
// concurrent use and may be called from observer callbacks or tick functions.
//
// Every operation that changes what is running bumps gen. Ticks and lease
// acquisitions tagged with an older gen are dropped, and their leases are
// released, so a superseded attempt can never touch the current one.
type Machine struct {
	spec      Spec
	provider  lease.Provider
	clock     sampling.Clock
	slot      *lease.Slot
	history   *history.Log
	log       logger.Logger
	observers []Observer
	now       func() time.Time

	mu      sync.Mutex
	state   State
	pending bool
	gen     uint64
	device  string
	active  string
	loop    *sampling.Handle
	run     *run
	message string
}

// New returns an idle machine for spec. provider may be nil, in which case
// every Start fails with ErrResourceUnavailable.
func New(spec Spec, provider lease.Provider, clock sampling.Clock, opts ...Option) (*Machine, error) {
	errFactory := errors.New()

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if clock == nil {
		return nil, errFactory.WithMessage(ErrInvalidSpec, "diagnostic needs a clock")
	}

	m := &Machine{
		spec:     spec,
		provider: provider,
		clock:    clock,
		now:      time.Now,
	}

	if n, ok := clock.(interface{ Now() time.Time }); ok {
		m.now = n.Now
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = logger.Default()
	}
	m.log = m.log.With(spec.Name)

	if m.history == nil {
		m.history = history.NewLog(history.DefaultCapacity)
	}

	m.slot = lease.NewSlot(provider, m.log)

	return m, nil
}

// Start leases the selected device and starts sampling. It blocks while the
// provider resolves the request. Failures leave the machine Idle with a
// message; ErrAlreadyRunning leaves it untouched.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state == Running || m.pending {
		m.mu.Unlock()
		return errors.New().New(ErrAlreadyRunning)
	}

	m.gen++
	gen := m.gen
	m.state = Idle
	m.pending = true
	m.run = nil
	m.message = ""
	req := m.spec.Request.WithDevice(m.device)
	m.mu.Unlock()

	m.log.Debug().Str("device", req.DeviceID).Msg("Starting diagnostic")

	return m.launch(ctx, gen, req)
}

// OnSample records s into the running attempt.
func (m *Machine) OnSample(s Sample) error {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return errors.New().New(ErrNotRunning)
	}

	if s.Device == "" {
		s.Device = m.active
	}

	cleanup, err := m.recordLocked(s)
	m.mu.Unlock()
	cleanup()

	return err
}

// Stop ends the attempt. The outcome is Completed only when every criterion
// was satisfied. Stopping a pending start cancels it.
func (m *Machine) Stop() (Outcome, error) {
	m.mu.Lock()
	if m.state != Running && !m.pending {
		state := m.state
		m.mu.Unlock()
		return Outcome{State: state, Completed: state == Completed}, errors.New().New(ErrNotRunning)
	}

	outcome, cleanup := m.finishLocked(false)
	m.mu.Unlock()
	cleanup()

	return outcome, nil
}

// Reset stops any attempt and clears its counters. History is kept.
func (m *Machine) Reset() {
	m.mu.Lock()
	cleanup := func() {}
	if m.state == Running || m.pending {
		_, cleanup = m.finishLocked(false)
	}

	m.gen++
	m.state = Idle
	m.run = nil
	m.message = ""
	m.mu.Unlock()

	cleanup()
}

// SelectCapability chooses the device the next Start requests. While an
// attempt is live it switches devices in place: the old lease is released
// before the new one is requested and counters carry over.
func (m *Machine) SelectCapability(ctx context.Context, id string) error {
	m.mu.Lock()
	m.device = id

	if m.state != Running && !m.pending {
		m.mu.Unlock()
		return nil
	}

	if !m.pending && m.active == id {
		m.mu.Unlock()
		return nil
	}

	m.gen++
	gen := m.gen
	m.pending = true
	m.active = ""
	loop := m.loop
	m.loop = nil
	req := m.spec.Request.WithDevice(id)
	m.mu.Unlock()

	loop.Stop()
	m.log.Debug().Str("device", id).Msg("Switching device")

	return m.launch(ctx, gen, req)
}

// Devices lists the capabilities this diagnostic can run on.
func (m *Machine) Devices(ctx context.Context) ([]lease.Descriptor, error) {
	errFactory := errors.New()

	if m.provider == nil {
		return nil, errFactory.Wrap(lease.ErrResourceUnavailable, errFactory.New(lease.ErrNoProvider)).
			WithMessage("Capability is not supported in this environment")
	}

	devices, err := m.provider.Enumerate(ctx, m.spec.Request.Group)
	if err != nil {
		return nil, errFactory.Wrap(lease.ErrResourceUnavailable, err)
	}

	return devices, nil
}

// Snapshot returns a consistent copy of the observable state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Diagnostic: m.spec.Name,
		State:      m.state,
		Pending:    m.pending,
		Device:     m.device,
		Message:    m.message,
	}
	if m.active != "" {
		snap.Device = m.active
	}

	r := m.run
	if r == nil {
		snap.Criteria = newRun(m.spec, time.Time{}).criteria()
		return snap
	}

	snap.StartedAt = r.started
	snap.Samples = r.samples
	snap.Criteria = r.criteria()
	snap.Satisfied = len(r.progress) > 0 && r.satisfied()

	if m.state == Running {
		snap.Elapsed = m.now().Sub(r.started)
	} else {
		snap.Elapsed = r.last.Elapsed
	}

	if r.samples > 0 {
		snap.Current = r.last.Value
		snap.Best = r.best
		snap.Worst = r.worst
		snap.Average = r.average()
		snap.Symbol = r.last.Symbol
		snap.Verdict = m.spec.Classifier.Classify(r.last.Value)
		snap.Degraded = m.spec.WatchDegradation && Degraded(r.last.Value, r.best)
	}

	return snap
}

// State returns the lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// History returns finished runs, newest first.
func (m *Machine) History() []history.Summary {
	return m.history.Entries()
}

func (m *Machine) Spec() Spec {
	return m.spec
}

func (m *Machine) launch(ctx context.Context, gen uint64, req lease.Request) error {
	l, err := m.slot.Acquire(ctx, req)
	if errors.HasCode(err, lease.ErrAcquisitionRace) {
		return nil
	}

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.discard(l)
		return nil
	}

	if err != nil {
		cleanup := m.failLocked(err)
		m.mu.Unlock()
		cleanup()
		return err
	}

	device := l.Device().ID
	if m.run == nil {
		m.run = newRun(m.spec, m.now())
	}
	m.state = Running
	m.active = device
	m.mu.Unlock()

	loop, err := sampling.Start(m.clock, m.tickFunc(gen, l))

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		loop.Stop()
		m.discard(l)
		return nil
	}

	if err != nil {
		cleanup := m.failLocked(err)
		m.mu.Unlock()
		cleanup()
		return err
	}

	m.loop = loop
	m.pending = false
	m.mu.Unlock()

	m.log.Info().Str("device", device).Msg("Diagnostic running")
	m.notify(func(o Observer) { o.RunStarted(m.spec.Name, device) })

	return nil
}

func (m *Machine) tickFunc(gen uint64, l *lease.Lease) sampling.TickFunc {
	measure := m.spec.measure()
	device := l.Device().ID

	return func(tick sampling.Tick, elapsed time.Duration) {
		if !m.live(gen, tick.Device) {
			return
		}

		if tick.Err != nil {
			m.mu.Lock()
			if gen != m.gen {
				m.mu.Unlock()
				return
			}
			cleanup := m.failLocked(errors.New().Wrap(ErrDeviceLost, tick.Err))
			m.mu.Unlock()
			cleanup()
			return
		}

		s, ok := measure(l, tick, elapsed)
		if !ok {
			return
		}
		if s.At.IsZero() {
			s.At = tick.At
		}
		s.Device = device

		m.mu.Lock()
		if gen != m.gen || m.state != Running {
			m.mu.Unlock()
			return
		}
		cleanup, err := m.recordLocked(s)
		m.mu.Unlock()

		if err != nil {
			m.log.Debug().Err(err).Msg("Dropped sample")
		}
		cleanup()
	}
}

func (m *Machine) live(gen uint64, device string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return gen == m.gen && m.state == Running && (device == "" || device == m.active)
}

func (m *Machine) recordLocked(s Sample) (func(), error) {
	r := m.run

	if s.At.IsZero() {
		s.At = m.now()
	}

	if r.samples > 0 && s.At.Before(r.last.At) {
		return func() {}, errors.New().WithData(ErrOutOfOrder, s.At)
	}

	s.Seq = r.samples + 1
	s.Elapsed = s.At.Sub(r.started)
	if s.Elapsed < 0 {
		s.Elapsed = 0
	}

	r.observe(m.spec, s)
	verdict := m.spec.Classifier.Classify(s.Value)

	notify := func() {
		m.notify(func(o Observer) { o.SampleRecorded(m.spec.Name, s, verdict) })
	}

	if !m.spec.CompleteOnSatisfied || len(r.progress) == 0 || !r.satisfied() {
		return notify, nil
	}

	_, finish := m.finishLocked(false)

	return func() {
		notify()
		finish()
	}, nil
}

// finishLocked ends the live or pending attempt. The returned func stops the
// loop, releases the lease and notifies observers; call it after unlocking.
// A pending acquisition is released by launch once it resolves.
func (m *Machine) finishLocked(failed bool) (Outcome, func()) {
	wasRunning := m.state == Running
	r := m.run
	completed := wasRunning && !failed && r != nil && r.satisfied()

	m.gen++
	m.pending = false
	m.active = ""
	loop := m.loop
	m.loop = nil
	held := m.slot.Current()

	outcome := Outcome{State: Idle, Completed: completed}
	if completed {
		outcome.State = Completed
	}

	if r != nil && r.samples > 0 {
		outcome.Samples = r.samples
		outcome.Summary = r.summary(m.spec, m.now(), completed)
		outcome.Recorded = true
		m.history.Append(outcome.Summary)
	}

	m.state = outcome.State

	return outcome, func() {
		loop.Stop()
		if err := m.slot.Drop(held); err != nil {
			m.log.Warn().Err(err).Msg("Failed to release device")
		}

		if !wasRunning {
			return
		}

		m.log.Info().
			Str("state", outcome.State.String()).
			Uint64("samples", outcome.Samples).
			Msg("Diagnostic finished")
		m.notify(func(o Observer) { o.RunFinished(m.spec.Name, outcome) })
	}
}

// failLocked ends the attempt because of err and keeps err as the message.
func (m *Machine) failLocked(err error) func() {
	m.message = err.Error()
	_, finish := m.finishLocked(true)

	return func() {
		finish()
		m.log.Warn().Err(err).Msg("Diagnostic failed")
		m.notify(func(o Observer) { o.RunFailed(m.spec.Name, err) })
	}
}

func (m *Machine) discard(l *lease.Lease) {
	if err := m.slot.Drop(l); err != nil {
		m.log.Warn().Err(err).Msg("Failed to release superseded device")
	}
}

func (m *Machine) notify(fn func(Observer)) {
	for _, o := range m.observers {
		fn(o)
	}
}

