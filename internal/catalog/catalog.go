// Package catalog declares the built-in peripheral diagnostics.
package catalog

import (
	"sort"

	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/errors"
)

// Options tunes how catalog specs are built.
type Options struct {
	// CPURounds is the stress workload size per frame. Zero means
	// DefaultCPURounds.
	CPURounds int
	// Transcript, when set, receives every key of a keyboard run.
	Transcript *Transcript
}

// Entry is one named diagnostic.
type Entry struct {
	Name  string
	Title string
	build func(Options) diagnostic.Spec
}

// Spec builds a fresh spec. Specs carry per-run measure state, so each
// machine needs its own.
func (e Entry) Spec(opts Options) diagnostic.Spec {
	return e.build(opts)
}

var entries = map[string]Entry{
	"camera":     {Name: "camera", Title: "Webcam", build: func(Options) diagnostic.Spec { return Camera() }},
	"cpu":        {Name: "cpu", Title: "CPU stress", build: CPU},
	"display":    {Name: "display", Title: "Defective pixels", build: func(Options) diagnostic.Spec { return Display() }},
	"gpu":        {Name: "gpu", Title: "GPU thermals", build: func(Options) diagnostic.Spec { return GPU() }},
	"keyboard":   {Name: "keyboard", Title: "Keyboard", build: Keyboard},
	"microphone": {Name: "microphone", Title: "Microphone", build: func(Options) diagnostic.Spec { return Microphone() }},
	"mouse":      {Name: "mouse", Title: "Mouse", build: func(Options) diagnostic.Spec { return Mouse() }},
}

// Lookup returns the entry called name.
func Lookup(name string) (Entry, error) {
	e, ok := entries[name]
	if !ok {
		return Entry{}, errors.New().WithData(ErrUnknownDiagnostic, name)
	}

	return e, nil
}

// Entries returns every entry sorted by name.
func Entries() []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
