package classify_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var score = classify.Table{
	Thresholds: []classify.Threshold{
		{Below: 100, Label: "very-slow"},
		{Below: 500, Label: "average"},
		{Below: 1000, Label: "good"},
	},
	Otherwise: "excellent",
}

func TestClassify(t *testing.T) {
	tests := []struct {
		value float64
		label string
		rank  int
	}{
		{value: -5, label: "very-slow", rank: 0},
		{value: 0, label: "very-slow", rank: 0},
		{value: 99.9, label: "very-slow", rank: 0},
		{value: 100, label: "average", rank: 1},
		{value: 499, label: "average", rank: 1},
		{value: 500, label: "good", rank: 2},
		{value: 1000, label: "excellent", rank: 3},
		{value: math.Inf(1), label: "excellent", rank: 3},
		{value: math.NaN(), label: "excellent", rank: 3},
	}

	for _, tt := range tests {
		got := classify.Classify(tt.value, score)
		assert.Equal(t, tt.label, got.Label, "value %v", tt.value)
		assert.Equal(t, tt.rank, got.Rank, "value %v", tt.value)
	}
}

func TestClassifyEmptyTable(t *testing.T) {
	got := classify.Table{Otherwise: "any"}.Classify(42)
	assert.Equal(t, classify.Verdict{Label: "any", Rank: 0}, got)
}

func TestClassifyMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		bounds := make([]float64, 1+rng.Intn(6))
		for i := range bounds {
			bounds[i] = rng.Float64()*2000 - 1000
		}
		sort.Float64s(bounds)

		table := classify.Table{Otherwise: "top"}
		for i, b := range bounds {
			if i > 0 && b == bounds[i-1] {
				continue
			}
			table.Thresholds = append(table.Thresholds, classify.Threshold{Below: b, Label: "band"})
		}
		require.NoError(t, table.Validate())

		values := make([]float64, 200)
		for i := range values {
			values[i] = rng.Float64()*3000 - 1500
		}
		sort.Float64s(values)

		prev := -1
		for _, v := range values {
			rank := table.Classify(v).Rank
			assert.GreaterOrEqual(t, rank, prev, "value %v", v)
			prev = rank
		}
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, score.Validate())

	unsorted := classify.Table{
		Thresholds: []classify.Threshold{{Below: 10, Label: "a"}, {Below: 10, Label: "b"}},
		Otherwise:  "c",
	}
	err := unsorted.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, classify.ErrUnsortedTable))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"very-slow", "average", "good", "excellent"}, score.Labels())
}
