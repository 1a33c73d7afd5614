package diagnostic

import (
	"time"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

// DefaultWindow is the running-average window used when a spec sets none.
const DefaultWindow = 5

// Validate checks that s can drive a machine.
func (s Spec) Validate() error {
	errFactory := errors.New()

	if s.Name == "" {
		return errFactory.WithMessage(ErrInvalidSpec, "diagnostic needs a name")
	}

	if s.Window < 0 {
		return errFactory.WithData(ErrInvalidSpec, "negative window")
	}

	if err := s.Classifier.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidSpec, err)
	}

	seen := make(map[string]bool, len(s.Criteria))
	for _, c := range s.Criteria {
		if c.Name == "" {
			return errFactory.WithData(ErrInvalidSpec, "criterion without a name")
		}
		if seen[c.Name] {
			return errFactory.WithData(ErrInvalidSpec, "duplicate criterion "+c.Name)
		}
		seen[c.Name] = true

		if c.Kind == Count && c.Target < 1 {
			return errFactory.WithData(ErrInvalidSpec, "criterion "+c.Name+" needs a positive target")
		}
	}

	return nil
}

func (s Spec) window() int {
	if s.Window == 0 {
		return DefaultWindow
	}
	return s.Window
}

func (s Spec) measure() MeasureFunc {
	if s.Measure != nil {
		return s.Measure
	}
	return TickValue
}

// TickValue records the raw value and symbol of a tick.
func TickValue(_ *lease.Lease, tick sampling.Tick, _ time.Duration) (Sample, bool) {
	return Sample{At: tick.At, Value: tick.Value, Symbol: tick.Symbol}, true
}
