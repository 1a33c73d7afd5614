package catalog

import (
	"math"
	"time"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

const (
	AudioInputGroup = "audioinput"

	// FrequencyBins is the analyser bin count for a 256-point FFT.
	FrequencyBins = 128

	SignalLevel = 10
)

// FrequencyReader is implemented by audio grants exposing analyser output.
// It fills dst with byte magnitudes and returns how many bins it wrote.
type FrequencyReader interface {
	FrequencyData(dst []byte) int
}

// MicrophoneLevelTable bands the volume meter.
var MicrophoneLevelTable = classify.Table{
	Thresholds: []classify.Threshold{
		{Below: 30, Label: "low"},
		{Below: 60, Label: "medium"},
	},
	Otherwise: "high",
}

// MicrophoneStatusTable describes the volume in words. Only silence falls
// in the first band.
var MicrophoneStatusTable = classify.Table{
	Thresholds: []classify.Threshold{
		{Below: math.SmallestNonzeroFloat64, Label: "none"},
		{Below: 10, Label: "very-quiet"},
		{Below: 30, Label: "quiet"},
		{Below: 60, Label: "moderate"},
		{Below: 80, Label: "loud"},
	},
	Otherwise: "very-loud",
}

// Volume converts analyser bins into a 0..100 volume.
func Volume(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}

	var sum int
	for _, b := range bins {
		sum += int(b)
	}
	average := float64(sum) / float64(len(bins))

	return math.Min(100, average/256*200)
}

// Microphone passes once the input reaches an audible level.
func Microphone() diagnostic.Spec {
	return diagnostic.Spec{
		Name: "microphone",
		Request: lease.Request{
			Kind:  lease.KindDevice,
			Group: AudioInputGroup,
			Params: map[string]string{
				"echoCancellation": "true",
				"noiseSuppression": "true",
				"autoGainControl":  "true",
			},
		},
		Criteria: []diagnostic.Criterion{
			{Name: "signal", Label: "Audible input", Kind: diagnostic.Threshold, Level: SignalLevel},
		},
		Classifier: MicrophoneLevelTable,
		Window:     5,
		Measure: func(l *lease.Lease, tick sampling.Tick, _ time.Duration) (diagnostic.Sample, bool) {
			if reader, ok := l.Grant().(FrequencyReader); ok {
				bins := make([]byte, FrequencyBins)
				n := max(0, min(reader.FrequencyData(bins), len(bins)))
				return diagnostic.Sample{At: tick.At, Value: Volume(bins[:n])}, true
			}

			return diagnostic.Sample{At: tick.At, Value: math.Min(100, math.Max(0, tick.Value))}, true
		},
	}
}
