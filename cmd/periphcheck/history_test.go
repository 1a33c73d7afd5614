package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRuns() []history.Summary {
	return []history.Summary{{
		Label:      "14:02:11",
		Diagnostic: "cpu",
		Device:     "cpu",
		StartedAt:  time.Date(2026, 5, 4, 14, 1, 41, 0, time.UTC),
		Duration:   30 * time.Second,
		Samples:    1800,
		Best:       2100,
		Average:    1875.5,
		Verdict:    "excellent",
		Completed:  true,
	}}
}

func TestWriteHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, formatTable, sampleRuns()))

	out := buf.String()
	assert.Contains(t, out, "DIAGNOSTIC")
	assert.Contains(t, out, "14:02:11")
	assert.Contains(t, out, "excellent")
	assert.Contains(t, out, "completed")
}

func TestWriteHistoryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, formatJSON, sampleRuns()))

	var got []history.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "cpu", got[0].Diagnostic)
	assert.Equal(t, uint64(1800), got[0].Samples)
}

func TestWriteHistoryYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, formatYAML, sampleRuns()))
	assert.Contains(t, buf.String(), "diagnostic: cpu")

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "excellent", got[0]["verdict"])
}

func TestWriteHistoryEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, formatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteHistoryUnknownFormat(t *testing.T) {
	err := writeHistory(&bytes.Buffer{}, "xml", sampleRuns())
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}
