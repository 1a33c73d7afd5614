package catalog

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

const KeyboardGroup = "keyboard"

// KeyboardLayout is the on-screen layout, row by row. Keys repeat where the
// physical keyboard has two of them.
var KeyboardLayout = [][]string{
	{"`", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "=", "Backspace"},
	{"Tab", "q", "w", "e", "r", "t", "y", "u", "i", "o", "p", "[", "]", "\\"},
	{"CapsLock", "a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'", "Enter"},
	{"Shift", "z", "x", "c", "v", "b", "n", "m", ",", ".", "/", "Shift"},
	{"Ctrl", "Win", "Alt", "Space", "Alt", "Ctrl", "←", "↑", "↓", "→"},
}

var keyNames = map[string]string{
	" ":          "Space",
	"ArrowLeft":  "←",
	"ArrowUp":    "↑",
	"ArrowDown":  "↓",
	"ArrowRight": "→",
	"Control":    "Ctrl",
	"Meta":       "Win",
	"Escape":     "Esc",
}

// NormalizeKey maps an event key name onto its layout label.
func NormalizeKey(key string) string {
	if name, ok := keyNames[key]; ok {
		return name
	}
	return key
}

// LayoutKeys returns each distinct layout key once, in layout order.
func LayoutKeys() []string {
	seen := make(map[string]bool)
	var keys []string

	for _, row := range KeyboardLayout {
		for _, k := range row {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	return keys
}

// Keyboard passes once every layout key has been pressed.
func Keyboard(opts Options) diagnostic.Spec {
	keys := LayoutKeys()
	criteria := make([]diagnostic.Criterion, len(keys))
	for i, k := range keys {
		criteria[i] = diagnostic.Criterion{Name: k, Label: k, Kind: diagnostic.Toggle, Symbol: k}
	}

	transcript := opts.Transcript

	return diagnostic.Spec{
		Name:     "keyboard",
		Request:  lease.Request{Kind: lease.KindFocus, Group: KeyboardGroup},
		Criteria: criteria,
		Measure: func(_ *lease.Lease, tick sampling.Tick, _ time.Duration) (diagnostic.Sample, bool) {
			if tick.Symbol == "" {
				return diagnostic.Sample{}, false
			}

			transcript.Press(tick.Symbol)

			return diagnostic.Sample{At: tick.At, Value: 1, Symbol: NormalizeKey(tick.Symbol)}, true
		},
		CompleteOnSatisfied: true,
	}
}

// Transcript accumulates the text typed during a keyboard run. Its methods
// are nil-safe.
type Transcript struct {
	mu    sync.Mutex
	text  []rune
	count int
}

// Press applies one key event: printable keys append and count,
// Backspace deletes the last character.
func (t *Transcript) Press(key string) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case key == "Backspace":
		if len(t.text) > 0 {
			t.text = t.text[:len(t.text)-1]
		}
	case utf8.RuneCountInString(key) == 1:
		t.text = append(t.text, []rune(key)...)
		t.count++
	}
}

func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	for _, r := range t.text {
		b.WriteRune(r)
	}
	return b.String()
}

// Count returns how many printable keys were typed, deletions included.
func (t *Transcript) Count() int {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *Transcript) Reset() {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = nil
	t.count = 0
}
