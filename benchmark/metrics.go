// Package benchmark drives trackers over a video, samples hardware usage per
// frame and writes the summary files consumed by the analysis scripts.
package benchmark

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameData holds one value per processed frame for each series.
type FrameData struct {
	Latencies []float64 `json:"latencies"`
	CPUUsage  []float64 `json:"cpu_usage"`
	RAMUsage  []float64 `json:"ram_usage"`
	GPUUsage  []float64 `json:"gpu_usage"`
	GPUMemory []float64 `json:"gpu_memory"`
}

// Len returns the number of frames recorded.
func (f *FrameData) Len() int {
	return len(f.Latencies)
}

// Append records one frame.
func (f *FrameData) Append(latencyMS, cpu, ram, gpu, gpuMemory float64) {
	f.Latencies = append(f.Latencies, latencyMS)
	f.CPUUsage = append(f.CPUUsage, cpu)
	f.RAMUsage = append(f.RAMUsage, ram)
	f.GPUUsage = append(f.GPUUsage, gpu)
	f.GPUMemory = append(f.GPUMemory, gpuMemory)
}

func (f *FrameData) validate() error {
	n := len(f.Latencies)
	if n == 0 {
		return ErrNoFrames
	}
	if len(f.CPUUsage) != n || len(f.RAMUsage) != n || len(f.GPUUsage) != n || len(f.GPUMemory) != n {
		return errors.Errorf("frame series lengths differ: latencies=%d cpu=%d ram=%d gpu=%d gpu_memory=%d",
			n, len(f.CPUUsage), len(f.RAMUsage), len(f.GPUUsage), len(f.GPUMemory))
	}
	return nil
}

// Summary is the per-tracker aggregate written to the summary CSV and JSON.
type Summary struct {
	Tracker         string  `json:"tracker"`
	FramesProcessed int     `json:"frames_processed"`
	AvgFPS          float64 `json:"avg_fps"`
	MinFPS          float64 `json:"min_fps"`
	MaxFPS          float64 `json:"max_fps"`
	AvgLatencyMS    float64 `json:"avg_latency_ms"`
	StdLatencyMS    float64 `json:"std_latency_ms"`
	MaxLatencyMS    float64 `json:"max_latency_ms"`
	MinLatencyMS    float64 `json:"min_latency_ms"`
	P95LatencyMS    float64 `json:"p95_latency_ms"`
	P99LatencyMS    float64 `json:"p99_latency_ms"`
	AvgCPUPercent   float64 `json:"avg_cpu_percent"`
	MaxCPUPercent   float64 `json:"max_cpu_percent"`
	AvgRAMMB        float64 `json:"avg_ram_mb"`
	MaxRAMMB        float64 `json:"max_ram_mb"`
	AvgGPUUtil      float64 `json:"avg_gpu_util"`
	MaxGPUUtil      float64 `json:"max_gpu_util"`
	AvgGPUMemoryMB  float64 `json:"avg_gpu_memory_mb"`
	MaxGPUMemoryMB  float64 `json:"max_gpu_memory_mb"`
	BaselineRAMMB   float64 `json:"baseline_ram_mb"`
	LatencyVariance float64 `json:"latency_variance"`
}

// Result is a tracker's summary together with its per-frame series.
type Result struct {
	Summary
	Frames FrameData `json:"-"`
}

// Summarize aggregates frame series into a Summary.
//
// FPS values derive from latencies in milliseconds: avg_fps is frames over
// total seconds, min_fps and max_fps invert the slowest and fastest frame.
// A zero latency leaves the affected FPS field at 0.
//
// Arguments:
// - name: Tracker name.
// - frames: Per-frame series, all of equal non-zero length.
// - baselineRAM: Process RSS in MB sampled before the first update.
//
// Returns:
// - Summary: The aggregate.
// - error: ErrNoFrames for empty series, or an error for mismatched lengths.
func Summarize(name string, frames FrameData, baselineRAM float64) (Summary, error) {
	if err := frames.validate(); err != nil {
		return Summary{}, errors.Wrapf(err, "summarize %s", name)
	}

	lat := frames.Latencies
	totalSeconds := floats.Sum(lat) / 1000

	s := Summary{
		Tracker:         name,
		FramesProcessed: len(lat),
		AvgFPS:          safeDiv(float64(len(lat)), totalSeconds),
		MinFPS:          safeDiv(1000, Max(lat)),
		MaxFPS:          safeDiv(1000, Min(lat)),
		AvgLatencyMS:    Mean(lat),
		StdLatencyMS:    Std(lat),
		MaxLatencyMS:    Max(lat),
		MinLatencyMS:    Min(lat),
		P95LatencyMS:    Percentile(lat, 95),
		P99LatencyMS:    Percentile(lat, 99),
		AvgCPUPercent:   Mean(frames.CPUUsage),
		MaxCPUPercent:   Max(frames.CPUUsage),
		AvgRAMMB:        Mean(frames.RAMUsage),
		MaxRAMMB:        Max(frames.RAMUsage),
		AvgGPUUtil:      Mean(frames.GPUUsage),
		MaxGPUUtil:      Max(frames.GPUUsage),
		AvgGPUMemoryMB:  Mean(frames.GPUMemory),
		MaxGPUMemoryMB:  Max(frames.GPUMemory),
		BaselineRAMMB:   baselineRAM,
		LatencyVariance: Variance(lat),
	}

	return s, nil
}

func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Variance returns the population variance (divisor n), or 0 for an empty series.
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.PopVariance(x, nil)
}

// Std returns the population standard deviation.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// Max returns the largest value, or 0 for an empty series.
func Max(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Max(x)
}

// Min returns the smallest value, or 0 for an empty series.
func Min(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Min(x)
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between closest ranks: rank = p/100 * (n-1).
//
// The input is not modified. An empty series yields 0.
func Percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return 0
	}

	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
