package diagnostic

import (
	"time"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/history"
)

// run is the mutable state of one attempt.
type run struct {
	started time.Time
	samples uint64
	last    Sample
	best    float64
	worst   float64

	window []float64
	next   int
	filled int

	progress []Progress
}

func newRun(spec Spec, started time.Time) *run {
	r := &run{
		started:  started,
		window:   make([]float64, spec.window()),
		progress: make([]Progress, len(spec.Criteria)),
	}

	for i, c := range spec.Criteria {
		r.progress[i] = Progress{
			Name:   c.Name,
			Label:  c.Label,
			Kind:   c.Kind,
			Target: c.target(),
		}
	}

	return r
}

func (r *run) observe(spec Spec, s Sample) {
	r.samples++

	if r.samples == 1 || s.Value > r.best {
		r.best = s.Value
	}
	if r.samples == 1 || s.Value < r.worst {
		r.worst = s.Value
	}
	r.last = s

	r.window[r.next] = s.Value
	r.next = (r.next + 1) % len(r.window)
	if r.filled < len(r.window) {
		r.filled++
	}

	for i, c := range spec.Criteria {
		p := &r.progress[i]
		if p.Satisfied || !c.matches(s) {
			continue
		}

		switch c.Kind {
		case Count:
			p.Count++
		case Threshold:
			if s.Value >= c.Level {
				p.Count = 1
			}
		case Toggle:
			p.Count = 1
		}
		p.Satisfied = p.Count >= p.Target
	}
}

func (r *run) average() float64 {
	if r.filled == 0 {
		return 0
	}

	var total float64
	for i := 0; i < r.filled; i++ {
		total += r.window[i]
	}
	return total / float64(r.filled)
}

// satisfied reports whether every criterion is met. A run without criteria
// is satisfied.
func (r *run) satisfied() bool {
	for _, p := range r.progress {
		if !p.Satisfied {
			return false
		}
	}
	return true
}

func (r *run) criteria() []Progress {
	return append([]Progress(nil), r.progress...)
}

func (r *run) summary(spec Spec, finished time.Time, completed bool) history.Summary {
	results := make([]history.CriterionResult, len(r.progress))
	for i, p := range r.progress {
		results[i] = history.CriterionResult{
			Name:      p.Name,
			Count:     p.Count,
			Target:    p.Target,
			Satisfied: p.Satisfied,
		}
	}

	duration := finished.Sub(r.started)
	if duration < 0 {
		duration = 0
	}

	return history.Summary{
		Label:      finished.Format(history.LabelLayout),
		Diagnostic: spec.Name,
		Device:     r.last.Device,
		StartedAt:  r.started,
		Duration:   duration,
		Samples:    r.samples,
		Last:       r.last.Value,
		Best:       r.best,
		Worst:      r.worst,
		Average:    r.average(),
		Verdict:    classify.Classify(r.last.Value, spec.Classifier).Label,
		Completed:  completed,
		Criteria:   results,
	}
}
