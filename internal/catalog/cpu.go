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
	ComputeGroup     = "compute"
	DefaultCPURounds = 200
)

// CPUScoreTable bands the per-frame performance score.
var CPUScoreTable = classify.Table{
	Thresholds: []classify.Threshold{
		{Below: 100, Label: "very-slow"},
		{Below: 500, Label: "average"},
		{Below: 1000, Label: "good"},
	},
	Otherwise: "excellent",
}

// CPULoadTable bands the load percentage derived from a score.
var CPULoadTable = classify.Table{
	Thresholds: []classify.Threshold{
		{Below: 50, Label: "normal"},
		{Below: 80, Label: "elevated"},
	},
	Otherwise: "high",
}

// CPU stresses the host once per frame and scores how long it took.
func CPU(opts Options) diagnostic.Spec {
	rounds := opts.CPURounds
	if rounds <= 0 {
		rounds = DefaultCPURounds
	}

	return diagnostic.Spec{
		Name:             "cpu",
		Request:          lease.Request{Kind: lease.KindClock, Group: ComputeGroup},
		Classifier:       CPUScoreTable,
		WatchDegradation: true,
		Measure: func(_ *lease.Lease, tick sampling.Tick, _ time.Duration) (diagnostic.Sample, bool) {
			begin := time.Now()
			Stress(rounds)
			return diagnostic.Sample{At: tick.At, Value: CPUScore(time.Since(begin))}, true
		},
	}
}

// CPUScore converts one workload duration into a score: 100000 divided by
// the milliseconds taken, rounded. Durations under a microsecond count as
// one microsecond.
func CPUScore(d time.Duration) float64 {
	if d < time.Microsecond {
		d = time.Microsecond
	}
	ms := float64(d) / float64(time.Millisecond)

	return math.Round(100000 / ms)
}

// CPULoad maps a score onto 0..100.
func CPULoad(score float64) float64 {
	return math.Min(100, math.Round(score/1000*100))
}

// Stress runs rounds of mixed floating point and integer work and returns a
// value derived from all of it.
func Stress(rounds int) float64 {
	var result float64

	for i := 0; i < rounds; i++ {
		a, b := 0.0, 1.0
		for k := 0; k < 100; k++ {
			a, b = b, a+b
			result += math.Sin(b) * math.Cos(b)
		}

		for x := 0; x < 50; x++ {
			for y := 0; y < 50; y++ {
				result += math.Sqrt(float64(x*y)) * math.Log(float64(x+y+1))
			}
		}

		for n := 2; n < 200; n++ {
			if isPrime(n) {
				result += float64(n)
			}
		}
	}

	return result
}

func isPrime(n int) bool {
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return n > 1
}
