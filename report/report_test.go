package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/buildscale/bench"
)

func TestSummarize(t *testing.T) {
	result := bench.Result{
		1000: {3000, 1000, 2000, 4000},
		100:  {500, 300, 400},
		0:    {},
	}

	got := Summarize(result)
	require.Len(t, got, 2)

	assert.Equal(t, LevelSummary{
		Pages: 100, Trials: 3,
		MinMs: 300, MeanMs: 400, MedianMs: 400, MaxMs: 500,
	}, got[0])
	assert.Equal(t, LevelSummary{
		Pages: 1000, Trials: 4,
		MinMs: 1000, MeanMs: 2500, MedianMs: 2500, MaxMs: 4000,
	}, got[1])

	// Summarize must not reorder the caller's samples.
	assert.Equal(t, []float64{3000, 1000, 2000, 4000}, result[1000])
}

func TestGenerate(t *testing.T) {
	result := bench.Result{
		100:  {500, 500},
		1000: {1500, 1500},
	}

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, result))

	output := buf.String()
	assert.Contains(t, output, "## Build Time Results")
	assert.Contains(t, output, "| 100 | 2 | 500.0ms | 500.0ms | 500.0ms | 500.0ms | 1.00x |")
	assert.Contains(t, output, "| 1000 | 2 | 1.50s | 1.50s | 1.50s | 1.50s | 3.00x |")
	assert.Less(t,
		strings.Index(output, "| 100 |"),
		strings.Index(output, "| 1000 |"),
	)
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, Generate(&buf, bench.Result{}))
}

func TestGenerateJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateJSON(&buf, bench.Result{2: {1, 3}}))

	var parsed []LevelSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, 2, parsed[0].Pages)
	assert.Equal(t, 2.0, parsed[0].MedianMs)
}

func TestFormatMs(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{0, "0.0ms"},
		{12.34, "12.3ms"},
		{999, "999.0ms"},
		{1000, "1.00s"},
		{61234, "61.23s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMs(tt.ms))
	}
}
