package catalog

import (
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/lease"
)

const (
	PointerGroup = "pointer"

	MouseLeft   = "left"
	MouseMiddle = "middle"
	MouseRight  = "right"
	MouseScroll = "scroll"

	MouseClicks  = 3
	MouseScrolls = 5
)

// Mouse passes once every button has been clicked and the wheel scrolled
// enough times.
func Mouse() diagnostic.Spec {
	return diagnostic.Spec{
		Name:    "mouse",
		Request: lease.Request{Kind: lease.KindFocus, Group: PointerGroup},
		Criteria: []diagnostic.Criterion{
			{Name: MouseLeft, Label: "Left click", Kind: diagnostic.Count, Symbol: MouseLeft, Target: MouseClicks},
			{Name: MouseRight, Label: "Right click", Kind: diagnostic.Count, Symbol: MouseRight, Target: MouseClicks},
			{Name: MouseMiddle, Label: "Middle click", Kind: diagnostic.Count, Symbol: MouseMiddle, Target: MouseClicks},
			{Name: MouseScroll, Label: "Scroll wheel", Kind: diagnostic.Count, Symbol: MouseScroll, Target: MouseScrolls},
		},
		CompleteOnSatisfied: true,
	}
}

// MouseButton names a pointer button by its event index: 0 primary,
// 1 auxiliary, 2 secondary.
func MouseButton(index int) (string, bool) {
	switch index {
	case 0:
		return MouseLeft, true
	case 1:
		return MouseMiddle, true
	case 2:
		return MouseRight, true
	default:
		return "", false
	}
}
