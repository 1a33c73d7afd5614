package diagnostic

import (
	"fmt"
	"time"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/history"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

// State is the lifecycle position of a machine.
type State int

const (
	Idle State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CriterionKind selects how a criterion is satisfied.
type CriterionKind int

const (
	// Count is satisfied after Target matching samples.
	Count CriterionKind = iota
	// Threshold is satisfied once a matching sample reaches Level.
	Threshold
	// Toggle is satisfied by a single matching sample.
	Toggle
)

func (k CriterionKind) String() string {
	switch k {
	case Count:
		return "count"
	case Threshold:
		return "threshold"
	case Toggle:
		return "toggle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Criterion is one named pass condition of a run. A sample matches when
// Symbol is empty or equals the sample's symbol.
type Criterion struct {
	Name   string
	Label  string
	Kind   CriterionKind
	Symbol string
	Target int
	Level  float64
}

func (c Criterion) target() int {
	if c.Kind == Count {
		return c.Target
	}
	return 1
}

func (c Criterion) matches(s Sample) bool {
	return c.Symbol == "" || c.Symbol == s.Symbol
}

// Sample is one measurement. Seq, Device and Elapsed are filled in by the
// machine when it records the sample.
type Sample struct {
	Seq     uint64
	At      time.Time
	Elapsed time.Duration
	Device  string
	Value   float64
	Symbol  string
}

// MeasureFunc turns a raw tick into a sample. Returning false skips the
// tick. It runs without the machine lock held and must not block.
type MeasureFunc func(l *lease.Lease, tick sampling.Tick, elapsed time.Duration) (Sample, bool)

// Spec declares one diagnostic.
type Spec struct {
	Name       string
	Request    lease.Request
	Criteria   []Criterion
	Classifier classify.Table
	// Window is how many recent samples the running average covers.
	Window  int
	Measure MeasureFunc

	WatchDegradation    bool
	CompleteOnSatisfied bool
}

// Progress is the live state of one criterion.
type Progress struct {
	Name      string
	Label     string
	Kind      CriterionKind
	Count     int
	Target    int
	Satisfied bool
}

// String renders progress as "count/target".
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Count, p.Target)
}

// Snapshot is a consistent copy of everything a collaborator may display.
type Snapshot struct {
	Diagnostic string
	State      State
	Pending    bool
	Device     string
	StartedAt  time.Time
	Elapsed    time.Duration
	Samples    uint64
	Current    float64
	Best       float64
	Worst      float64
	Average    float64
	Symbol     string
	Verdict    classify.Verdict
	Degraded   bool
	Criteria   []Progress
	Satisfied  bool
	Message    string
}

// Outcome reports how a run ended.
type Outcome struct {
	State     State
	Completed bool
	Samples   uint64
	Summary   history.Summary
	Recorded  bool
}

// Observer receives lifecycle events. Calls are made without the machine
// lock held, from whichever goroutine caused the event.
type Observer interface {
	RunStarted(diagnostic, device string)
	SampleRecorded(diagnostic string, sample Sample, verdict classify.Verdict)
	RunFinished(diagnostic string, outcome Outcome)
	RunFailed(diagnostic string, err error)
}

// Degraded reports whether current has fallen below half of a positive best.
func Degraded(current, best float64) bool {
	return best > 0 && current < best/2
}
