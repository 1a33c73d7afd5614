package telemetry_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/periphcheck/internal/devicetest"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"codeberg.org/mutker/periphcheck/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.New()

	require.NoError(t, m.Register(reg))
	require.NoError(t, m.Register(reg))
}

func TestMachineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.New()
	require.NoError(t, metrics.Register(reg))

	p := devicetest.NewProvider(lease.Descriptor{ID: "pad", Group: "pointer"})
	c := devicetest.NewClock(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))
	spec := diagnostic.Spec{
		Name:     "clicks",
		Request:  lease.Request{Group: "pointer"},
		Criteria: []diagnostic.Criterion{{Name: "left", Kind: diagnostic.Count, Symbol: "left", Target: 2}},
	}
	m, err := diagnostic.New(spec, p, c, diagnostic.WithObserver(metrics), diagnostic.WithLogger(logger.Nop()))
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP periphcheck_run_active 1 while a run holds the device.
# TYPE periphcheck_run_active gauge
periphcheck_run_active{device="pad",diagnostic="clicks"} 1
`), "periphcheck_run_active"))

	c.Symbol("pad", "left", 10*time.Second)
	c.Symbol("pad", "left", 10*time.Second)
	_, err = m.Stop()
	require.NoError(t, err)

	p.Deny("pad", errors.New().WithMessage(errors.ErrResourceBusy, "in use"))
	require.Error(t, m.Start(context.Background()))

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP periphcheck_samples_total Samples recorded by diagnostic.
# TYPE periphcheck_samples_total counter
periphcheck_samples_total{diagnostic="clicks"} 2
`), "periphcheck_samples_total"))
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP periphcheck_runs_total Finished diagnostic runs, partitioned by outcome.
# TYPE periphcheck_runs_total counter
periphcheck_runs_total{diagnostic="clicks",outcome="completed"} 1
periphcheck_runs_total{diagnostic="clicks",outcome="failed"} 1
`), "periphcheck_runs_total"))

	count, err := testutil.GatherAndCount(reg, "periphcheck_run_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "periphcheck_run_active")
	require.NoError(t, err)
	assert.Zero(t, count)
}
