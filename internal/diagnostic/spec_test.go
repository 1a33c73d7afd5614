package diagnostic_test

import (
	"testing"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/devicetest"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*diagnostic.Spec)
		valid  bool
	}{
		{"valid", func(*diagnostic.Spec) {}, true},
		{"no name", func(s *diagnostic.Spec) { s.Name = "" }, false},
		{"negative window", func(s *diagnostic.Spec) { s.Window = -1 }, false},
		{"duplicate criterion", func(s *diagnostic.Spec) {
			s.Criteria = append(s.Criteria, s.Criteria[0])
		}, false},
		{"zero count target", func(s *diagnostic.Spec) { s.Criteria[0].Target = 0 }, false},
		{"toggle needs no target", func(s *diagnostic.Spec) {
			s.Criteria[0] = diagnostic.Criterion{Name: "frame", Kind: diagnostic.Toggle}
		}, true},
		{"unsorted classifier", func(s *diagnostic.Spec) {
			s.Classifier = classify.Table{Thresholds: []classify.Threshold{{Below: 5}, {Below: 1}}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := confirmSpec()
			spec.Criteria = append([]diagnostic.Criterion(nil), spec.Criteria...)
			tt.mutate(&spec)

			err := spec.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.HasCode(err, diagnostic.ErrInvalidSpec))
		})
	}
}

func TestNewRejectsMissingClock(t *testing.T) {
	_, err := diagnostic.New(confirmSpec(), devicetest.NewProvider(), nil)
	assert.True(t, errors.HasCode(err, diagnostic.ErrInvalidSpec))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", diagnostic.Idle.String())
	assert.Equal(t, "running", diagnostic.Running.String())
	assert.Equal(t, "completed", diagnostic.Completed.String())
	assert.Equal(t, "threshold", diagnostic.Threshold.String())
}
