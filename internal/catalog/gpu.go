package catalog

import (
	"time"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

const GPUGroup = "gpu"

// ThermalReader is implemented by grants that can report a temperature in
// degrees Celsius.
type ThermalReader interface {
	Temperature() (float64, error)
}

var GPUTemperatureTable = classify.Table{
	Thresholds: []classify.Threshold{
		{Below: 60, Label: "cool"},
		{Below: 80, Label: "warm"},
	},
	Otherwise: "hot",
}

// GPU samples the leased GPU's core temperature once per tick.
func GPU() diagnostic.Spec {
	return diagnostic.Spec{
		Name:       "gpu",
		Request:    lease.Request{Kind: lease.KindDevice, Group: GPUGroup},
		Classifier: GPUTemperatureTable,
		Measure: func(l *lease.Lease, tick sampling.Tick, _ time.Duration) (diagnostic.Sample, bool) {
			reader, ok := l.Grant().(ThermalReader)
			if !ok {
				return diagnostic.Sample{}, false
			}

			temp, err := reader.Temperature()
			if err != nil {
				return diagnostic.Sample{}, false
			}

			return diagnostic.Sample{At: tick.At, Value: temp}, true
		},
	}
}
