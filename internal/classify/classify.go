// Package classify maps numeric samples to qualitative bands.
package classify

import (
	"math"

	"codeberg.org/mutker/periphcheck/internal/errors"
)

// Threshold pairs an exclusive upper boundary with the label of the band
// below it.
type Threshold struct {
	Below float64
	Label string
}

// Table is an ascending list of thresholds plus the label used for values
// at or above the last boundary.
type Table struct {
	Thresholds []Threshold
	Otherwise  string
}

// Verdict is the band a value falls into. Rank is the index of the matched
// threshold, or len(Thresholds) for the catch-all band, so a higher rank
// always means a higher value.
type Verdict struct {
	Label string
	Rank  int
}

// Classify returns the band of the first boundary value is strictly below.
// NaN is never below a boundary and lands in the catch-all band.
func Classify(value float64, table Table) Verdict {
	for i, t := range table.Thresholds {
		if value < t.Below {
			return Verdict{Label: t.Label, Rank: i}
		}
	}

	return Verdict{Label: table.Otherwise, Rank: len(table.Thresholds)}
}

// Classify is shorthand for Classify(value, t).
func (t Table) Classify(value float64) Verdict {
	return Classify(value, t)
}

// Validate rejects tables whose boundaries are not strictly ascending.
func (t Table) Validate() error {
	errFactory := errors.New()

	prev := math.Inf(-1)
	for i, th := range t.Thresholds {
		if math.IsNaN(th.Below) || th.Below <= prev {
			return errFactory.WithData(ErrUnsortedTable, struct {
				Index int
				Below float64
			}{
				Index: i,
				Below: th.Below,
			})
		}
		prev = th.Below
	}

	return nil
}

// Labels returns every label in rank order.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t.Thresholds)+1)
	for _, th := range t.Thresholds {
		labels = append(labels, th.Label)
	}

	return append(labels, t.Otherwise)
}
