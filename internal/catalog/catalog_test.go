package catalog_test

import (
	"context"
	"math"
	"testing"
	"time"

	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/devicetest"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/lease/leasemock"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"codeberg.org/mutker/periphcheck/internal/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var epoch = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func machine(t *testing.T, spec diagnostic.Spec, p lease.Provider, c sampling.Clock) *diagnostic.Machine {
	t.Helper()

	m, err := diagnostic.New(spec, p, c, diagnostic.WithLogger(logger.Nop()))
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	return m
}

func TestEntriesValidate(t *testing.T) {
	entries := catalog.Entries()
	require.Len(t, entries, 7)

	for i, e := range entries {
		if i > 0 {
			assert.Less(t, entries[i-1].Name, e.Name)
		}
		spec := e.Spec(catalog.Options{})
		assert.Equal(t, e.Name, spec.Name)
		assert.NoError(t, spec.Validate(), e.Name)
		assert.NotEmpty(t, e.Title)
	}

	_, err := catalog.Lookup("joystick")
	assert.True(t, errors.HasCode(err, catalog.ErrUnknownDiagnostic))

	e, err := catalog.Lookup("mouse")
	require.NoError(t, err)
	assert.Equal(t, "Mouse", e.Title)
}

func TestCPUScore(t *testing.T) {
	assert.Equal(t, float64(1000), catalog.CPUScore(100*time.Millisecond))
	assert.Equal(t, float64(333), catalog.CPUScore(300*time.Millisecond))
	assert.Equal(t, float64(100000000), catalog.CPUScore(0))

	assert.Equal(t, float64(25), catalog.CPULoad(250))
	assert.Equal(t, float64(100), catalog.CPULoad(5000))

	assert.Equal(t, "very-slow", catalog.CPUScoreTable.Classify(99).Label)
	assert.Equal(t, "average", catalog.CPUScoreTable.Classify(100).Label)
	assert.Equal(t, "good", catalog.CPUScoreTable.Classify(999).Label)
	assert.Equal(t, "excellent", catalog.CPUScoreTable.Classify(1000).Label)
	assert.Equal(t, "elevated", catalog.CPULoadTable.Classify(50).Label)
	assert.Equal(t, "high", catalog.CPULoadTable.Classify(80).Label)
}

func TestStressIsDeterministic(t *testing.T) {
	assert.Equal(t, catalog.Stress(2), catalog.Stress(2))
	assert.Zero(t, catalog.Stress(0))
}

func TestCPUMeasure(t *testing.T) {
	p := devicetest.NewProvider(lease.Descriptor{ID: "cpu", Kind: lease.KindClock, Group: catalog.ComputeGroup})
	c := devicetest.NewClock(epoch)
	m := machine(t, catalog.CPU(catalog.Options{CPURounds: 1}), p, c)

	c.Value("", 0, time.Second)
	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.Samples)
	assert.Positive(t, snap.Current)
	assert.Equal(t, "cpu", snap.Device)
}

func TestMouse(t *testing.T) {
	p := devicetest.NewProvider(lease.Descriptor{ID: "pointer", Kind: lease.KindFocus, Group: catalog.PointerGroup})
	c := devicetest.NewClock(epoch)
	m := machine(t, catalog.Mouse(), p, c)

	for i := 0; i < catalog.MouseClicks; i++ {
		c.Symbol("pointer", catalog.MouseLeft, time.Second)
		c.Symbol("pointer", catalog.MouseRight, time.Second)
	}
	for i := 0; i < catalog.MouseScrolls; i++ {
		c.Symbol("pointer", catalog.MouseScroll, time.Second)
	}
	assert.Equal(t, diagnostic.Running, m.State())

	c.Symbol("pointer", catalog.MouseMiddle, time.Second)
	c.Symbol("pointer", catalog.MouseMiddle, time.Second)
	crit := m.Snapshot().Criteria
	assert.Equal(t, "2/3", crit[2].String())

	c.Symbol("pointer", catalog.MouseMiddle, time.Second)
	assert.Equal(t, diagnostic.Completed, m.State())
	assert.True(t, m.History()[0].Completed)
	assert.Zero(t, p.Held("pointer"))

	button, ok := catalog.MouseButton(2)
	assert.True(t, ok)
	assert.Equal(t, catalog.MouseRight, button)
	_, ok = catalog.MouseButton(4)
	assert.False(t, ok)
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		" ":          "Space",
		"ArrowLeft":  "←",
		"ArrowRight": "→",
		"ArrowUp":    "↑",
		"ArrowDown":  "↓",
		"Control":    "Ctrl",
		"Meta":       "Win",
		"Escape":     "Esc",
		"Enter":      "Enter",
		"q":          "q",
	}

	for in, want := range tests {
		assert.Equal(t, want, catalog.NormalizeKey(in), in)
	}
}

func TestLayoutKeysAreDistinct(t *testing.T) {
	keys := catalog.LayoutKeys()
	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k], k)
		seen[k] = true
	}

	assert.Equal(t, "`", keys[0])
	assert.True(t, seen["Shift"])
	assert.True(t, seen["→"])
	assert.Len(t, keys, 60)
}

func TestTranscript(t *testing.T) {
	var nilTranscript *catalog.Transcript
	nilTranscript.Press("a")
	assert.Empty(t, nilTranscript.Text())

	tr := &catalog.Transcript{}
	for _, k := range []string{"h", "i", " ", "x", "Backspace", "Shift", "!"} {
		tr.Press(k)
	}

	assert.Equal(t, "hi !", tr.Text())
	assert.Equal(t, 5, tr.Count())

	tr.Reset()
	assert.Empty(t, tr.Text())
	assert.Zero(t, tr.Count())
}

func TestKeyboardRun(t *testing.T) {
	p := devicetest.NewProvider(lease.Descriptor{ID: "tty", Kind: lease.KindFocus, Group: catalog.KeyboardGroup})
	c := devicetest.NewClock(epoch)
	tr := &catalog.Transcript{}
	m := machine(t, catalog.Keyboard(catalog.Options{Transcript: tr}), p, c)

	c.Symbol("tty", " ", time.Second)
	c.Symbol("tty", "ArrowUp", time.Second)
	c.Symbol("tty", "a", time.Second)

	snap := m.Snapshot()
	assert.Equal(t, "a", snap.Symbol)
	assert.Equal(t, " a", tr.Text())

	pressed := map[string]bool{}
	for _, progress := range snap.Criteria {
		if progress.Satisfied {
			pressed[progress.Name] = true
		}
	}
	assert.Equal(t, map[string]bool{"Space": true, "↑": true, "a": true}, pressed)

	for _, k := range catalog.LayoutKeys() {
		c.Symbol("tty", k, time.Second)
	}
	assert.Equal(t, diagnostic.Completed, m.State())
}

func TestMicrophoneVolume(t *testing.T) {
	assert.Zero(t, catalog.Volume(nil))
	assert.Equal(t, float64(50), catalog.Volume([]byte{64, 64}))
	assert.Equal(t, float64(100), catalog.Volume([]byte{255, 255}))

	status := catalog.MicrophoneStatusTable
	assert.Equal(t, "none", status.Classify(0).Label)
	assert.Equal(t, "very-quiet", status.Classify(0.5).Label)
	assert.Equal(t, "quiet", status.Classify(10).Label)
	assert.Equal(t, "moderate", status.Classify(30).Label)
	assert.Equal(t, "loud", status.Classify(60).Label)
	assert.Equal(t, "very-loud", status.Classify(80).Label)
	assert.NoError(t, status.Validate())
}

type analyser struct {
	desc lease.Descriptor
	bins []byte
}

func (a *analyser) Descriptor() lease.Descriptor { return a.desc }

func (a *analyser) FrequencyData(dst []byte) int { return copy(dst, a.bins) }

func TestMicrophoneRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := leasemock.NewMockProvider(ctrl)
	grant := &analyser{desc: lease.Descriptor{ID: "mic-1", Group: catalog.AudioInputGroup}, bins: []byte{2, 2, 2, 2}}

	provider.EXPECT().Acquire(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req lease.Request) (lease.Grant, error) {
			assert.Equal(t, "true", req.Params["echoCancellation"])
			return grant, nil
		})
	provider.EXPECT().Release(grant).Return(nil)

	c := devicetest.NewClock(epoch)
	m := machine(t, catalog.Microphone(), provider, c)

	c.Value("mic-1", 0, time.Second)
	snap := m.Snapshot()
	assert.InDelta(t, 1.5625, snap.Current, 1e-9)
	assert.Equal(t, "low", snap.Verdict.Label)
	assert.False(t, snap.Satisfied)

	grant.bins = []byte{40, 40, 40, 40}
	c.Value("mic-1", 0, time.Second)
	assert.True(t, m.Snapshot().Satisfied)

	_, err := m.Stop()
	require.NoError(t, err)
}

func TestCameraFrameRate(t *testing.T) {
	p := devicetest.NewProvider(
		lease.Descriptor{ID: "cam-1", Group: catalog.VideoInputGroup},
		lease.Descriptor{ID: "cam-2", Group: catalog.VideoInputGroup},
	)
	c := devicetest.NewClock(epoch)
	m := machine(t, catalog.Camera(), p, c)

	c.Value("cam-1", 0, time.Second)
	assert.Zero(t, m.Snapshot().Current)
	assert.True(t, m.Snapshot().Satisfied)

	c.Value("cam-1", 0, 40*time.Millisecond)
	snap := m.Snapshot()
	assert.InDelta(t, 25, snap.Current, 1e-9)
	assert.Equal(t, "fair", snap.Verdict.Label)

	c.Value("cam-1", 60, 40*time.Millisecond)
	assert.Equal(t, "smooth", m.Snapshot().Verdict.Label)

	require.NoError(t, m.SelectCapability(context.Background(), "cam-2"))
	c.Value("cam-2", 0, time.Second)
	assert.Zero(t, m.Snapshot().Current)
}

func TestDisplay(t *testing.T) {
	nav := catalog.NewNavigator(nil)
	assert.Equal(t, "Black", nav.Current().Name)
	assert.Equal(t, "Magenta", nav.Prev().Name)
	assert.Equal(t, "Black", nav.Next().Name)

	p := devicetest.NewProvider(lease.Descriptor{ID: "screen", Kind: lease.KindFocus, Group: catalog.DisplayGroup})
	c := devicetest.NewClock(epoch)
	m := machine(t, catalog.Display(), p, c)

	c.Symbol("screen", nav.Current().Name, time.Second)
	for i := 1; i < len(catalog.Swatches); i++ {
		assert.Equal(t, diagnostic.Running, m.State())
		c.Symbol("screen", nav.Next().Name, time.Second)
	}

	index, total := nav.Position()
	assert.Equal(t, 7, index)
	assert.Equal(t, 7, total)
	assert.Equal(t, diagnostic.Completed, m.State())
}

type thermal struct {
	desc lease.Descriptor
	temp float64
}

func (g *thermal) Descriptor() lease.Descriptor { return g.desc }

func (g *thermal) Temperature() (float64, error) { return g.temp, nil }

func TestGPU(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := leasemock.NewMockProvider(ctrl)
	grant := &thermal{desc: lease.Descriptor{ID: "GPU-0", Group: catalog.GPUGroup}, temp: 72}

	provider.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(grant, nil)
	provider.EXPECT().Release(grant).Return(nil)

	c := devicetest.NewClock(epoch)
	m := machine(t, catalog.GPU(), provider, c)

	c.Value("", 0, time.Second)
	snap := m.Snapshot()
	assert.Equal(t, float64(72), snap.Current)
	assert.Equal(t, "warm", snap.Verdict.Label)
	assert.False(t, math.IsNaN(snap.Average))

	m.Reset()
}
