package catalog

import (
	"sync"
	"time"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

const (
	VideoInputGroup = "videoinput"

	IdealWidth  = 1280
	IdealHeight = 720
)

var FrameRateTable = classify.Table{
	Thresholds: []classify.Threshold{
		{Below: 15, Label: "choppy"},
		{Below: 24, Label: "low"},
		{Below: 30, Label: "fair"},
	},
	Otherwise: "smooth",
}

// Camera passes once a frame arrives from the selected camera. Each frame
// tick is sampled as the frame rate: the tick value when the source reports
// one, otherwise the inverse of the gap since the previous frame of the same
// lease.
func Camera() diagnostic.Spec {
	var (
		mu    sync.Mutex
		owner *lease.Lease
		last  time.Time
	)

	return diagnostic.Spec{
		Name: "camera",
		Request: lease.Request{
			Kind:  lease.KindDevice,
			Group: VideoInputGroup,
			Params: map[string]string{
				"width":  "1280",
				"height": "720",
			},
		},
		Criteria: []diagnostic.Criterion{
			{Name: "frame", Label: "Video frame", Kind: diagnostic.Toggle},
		},
		Classifier: FrameRateTable,
		Measure: func(l *lease.Lease, tick sampling.Tick, _ time.Duration) (diagnostic.Sample, bool) {
			mu.Lock()
			defer mu.Unlock()

			if owner != l {
				owner = l
				last = time.Time{}
			}

			fps := tick.Value
			if fps <= 0 && !last.IsZero() {
				if gap := tick.At.Sub(last); gap > 0 {
					fps = float64(time.Second) / float64(gap)
				}
			}
			last = tick.At

			return diagnostic.Sample{At: tick.At, Value: fps}, true
		},
	}
}
