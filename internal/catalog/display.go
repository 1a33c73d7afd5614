package catalog

import (
	"sync"
	"time"

	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

const DisplayGroup = "display"

// Swatch is one full-screen test colour.
type Swatch struct {
	Name string
	RGB  [3]uint8
}

// Swatches are shown in order to expose stuck or dead pixels.
var Swatches = []Swatch{
	{Name: "Black", RGB: [3]uint8{0x00, 0x00, 0x00}},
	{Name: "White", RGB: [3]uint8{0xff, 0xff, 0xff}},
	{Name: "Red", RGB: [3]uint8{0xff, 0x00, 0x00}},
	{Name: "Green", RGB: [3]uint8{0x00, 0xff, 0x00}},
	{Name: "Blue", RGB: [3]uint8{0x00, 0x00, 0xff}},
	{Name: "Yellow", RGB: [3]uint8{0xff, 0xff, 0x00}},
	{Name: "Magenta", RGB: [3]uint8{0xff, 0x00, 0xff}},
}

// Display passes once every swatch has been shown. A tick's symbol names the
// swatch on screen.
func Display() diagnostic.Spec {
	criteria := make([]diagnostic.Criterion, len(Swatches))
	for i, s := range Swatches {
		criteria[i] = diagnostic.Criterion{Name: s.Name, Label: s.Name, Kind: diagnostic.Toggle, Symbol: s.Name}
	}

	return diagnostic.Spec{
		Name: "display",
		Request: lease.Request{
			Kind:   lease.KindFocus,
			Group:  DisplayGroup,
			Params: map[string]string{"mode": "fullscreen"},
		},
		Criteria: criteria,
		Measure: func(_ *lease.Lease, tick sampling.Tick, _ time.Duration) (diagnostic.Sample, bool) {
			if tick.Symbol == "" {
				return diagnostic.Sample{}, false
			}
			return diagnostic.Sample{At: tick.At, Value: 1, Symbol: tick.Symbol}, true
		},
		CompleteOnSatisfied: true,
	}
}

// Navigator cycles through swatches.
type Navigator struct {
	mu       sync.Mutex
	swatches []Swatch
	index    int
}

// NewNavigator starts at the first swatch. An empty list means Swatches.
func NewNavigator(swatches []Swatch) *Navigator {
	if len(swatches) == 0 {
		swatches = Swatches
	}
	return &Navigator{swatches: swatches}
}

func (n *Navigator) Current() Swatch {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.swatches[n.index]
}

// Next advances one swatch, wrapping after the last.
func (n *Navigator) Next() Swatch {
	return n.step(1)
}

// Prev goes back one swatch, wrapping before the first.
func (n *Navigator) Prev() Swatch {
	return n.step(-1)
}

// Position returns the 1-based index and the swatch count.
func (n *Navigator) Position() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index + 1, len(n.swatches)
}

func (n *Navigator) step(delta int) Swatch {
	n.mu.Lock()
	defer n.mu.Unlock()

	size := len(n.swatches)
	n.index = ((n.index+delta)%size + size) % size

	return n.swatches[n.index]
}
