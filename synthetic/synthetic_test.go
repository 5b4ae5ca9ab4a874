package synthetic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-trackbench/benchmark"
	"github.com/nvr-ai/go-trackbench/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	results, err := Generate(Options{Frames: 300, Seed: 42})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, name := range tracker.Names() {
		r := results[i]
		assert.Equal(t, name, r.Tracker)
		assert.Equal(t, 300, r.FramesProcessed)
		assert.Equal(t, 300, r.Frames.Len())
		assert.Equal(t, Profiles[name].RAM.Mean, r.BaselineRAMMB)

		for f := 0; f < 300; f++ {
			assert.GreaterOrEqual(t, r.Frames.Latencies[f], 0.0)
			assert.GreaterOrEqual(t, r.Frames.CPUUsage[f], 0.0)
			assert.LessOrEqual(t, r.Frames.CPUUsage[f], 100.0)
			assert.GreaterOrEqual(t, r.Frames.GPUUsage[f], 0.0)
			assert.LessOrEqual(t, r.Frames.GPUUsage[f], 100.0)
			assert.GreaterOrEqual(t, r.Frames.RAMUsage[f], 0.0)
			assert.GreaterOrEqual(t, r.Frames.GPUMemory[f], 0.0)
		}
	}

	csrt := results[0]
	assert.Zero(t, csrt.MaxGPUUtil)
	assert.Zero(t, csrt.MaxGPUMemoryMB)
	assert.InDelta(t, 40, csrt.AvgLatencyMS, 3)
	// warm-up frames carry the +50 MB RAM offset
	assert.Greater(t, benchmark.Mean(csrt.Frames.RAMUsage[:10]), benchmark.Mean(csrt.Frames.RAMUsage[10:]))
}

func TestGenerateDefaults(t *testing.T) {
	results, err := Generate(Options{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, benchmark.DefaultFrames, results[0].FramesProcessed)
}

func TestGenerateSmallFrameCount(t *testing.T) {
	results, err := Generate(Options{Frames: 5, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, results[3].Frames.Len())
}

func TestGenerateDeterministic(t *testing.T) {
	write := func() string {
		dir := t.TempDir()
		results, err := Generate(Options{Frames: 120, Seed: 42})
		require.NoError(t, err)
		_, err = benchmark.WriteResults(dir, results)
		require.NoError(t, err)
		return dir
	}

	a, b := write(), write()
	files := []string{benchmark.SummaryCSVName, benchmark.FullJSONName}
	for _, name := range tracker.Names() {
		files = append(files, benchmark.FrameDataFileName(name))
	}

	for _, name := range files {
		first, err := os.ReadFile(filepath.Join(a, name))
		require.NoError(t, err)
		second, err := os.ReadFile(filepath.Join(b, name))
		require.NoError(t, err)
		assert.Equal(t, first, second, name)
	}

	other, err := Generate(Options{Frames: 120, Seed: 43})
	require.NoError(t, err)
	same, err := Generate(Options{Frames: 120, Seed: 42})
	require.NoError(t, err)
	assert.NotEqual(t, same[1].Frames.Latencies, other[1].Frames.Latencies)
}
