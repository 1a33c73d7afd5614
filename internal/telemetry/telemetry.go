// Package telemetry exports diagnostic lifecycle events as Prometheus
// metrics.
package telemetry

import (
	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "periphcheck"

	// OutcomeCompleted labels runs that met every criterion.
	OutcomeCompleted = "completed"
	// OutcomeIncomplete labels runs stopped with criteria outstanding.
	OutcomeIncomplete = "incomplete"
	// OutcomeFailed labels attempts ended by a device error.
	OutcomeFailed = "failed"
)

// Metrics is a diagnostic.Observer backed by Prometheus collectors.
type Metrics struct {
	runs     *prometheus.CounterVec
	samples  *prometheus.CounterVec
	value    *prometheus.GaugeVec
	rank     *prometheus.GaugeVec
	active   *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

var _ diagnostic.Observer = (*Metrics)(nil)

func New() *Metrics {
	return &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Finished diagnostic runs, partitioned by outcome.",
			},
			[]string{"diagnostic", "outcome"},
		),
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_total",
				Help:      "Samples recorded by diagnostic.",
			},
			[]string{"diagnostic"},
		),
		value: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sample_value",
				Help:      "Value of the latest sample.",
			},
			[]string{"diagnostic"},
		),
		rank: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "verdict_rank",
				Help:      "Classifier band of the latest sample, 0 being the lowest.",
			},
			[]string{"diagnostic"},
		),
		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_active",
				Help:      "1 while a run holds the device.",
			},
			[]string{"diagnostic", "device"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_seconds",
				Help:      "Duration of recorded runs in seconds.",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"diagnostic"},
		),
	}
}

// Register attaches the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, collector := range m.collectors() {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.runs, m.samples, m.value, m.rank, m.active, m.duration}
}

func (m *Metrics) RunStarted(name, device string) {
	m.active.Reset()
	m.active.WithLabelValues(name, device).Set(1)
}

func (m *Metrics) SampleRecorded(name string, sample diagnostic.Sample, verdict classify.Verdict) {
	m.samples.WithLabelValues(name).Inc()
	m.value.WithLabelValues(name).Set(sample.Value)
	m.rank.WithLabelValues(name).Set(float64(verdict.Rank))
}

func (m *Metrics) RunFinished(name string, outcome diagnostic.Outcome) {
	m.active.Reset()

	label := OutcomeIncomplete
	if outcome.Completed {
		label = OutcomeCompleted
	}
	m.runs.WithLabelValues(name, label).Inc()

	if outcome.Recorded {
		m.duration.WithLabelValues(name).Observe(outcome.Summary.Duration.Seconds())
	}
}

func (m *Metrics) RunFailed(name string, _ error) {
	m.runs.WithLabelValues(name, OutcomeFailed).Inc()
}
