// Package synthetic generates benchmark results with realistic per-tracker
// characteristics, for exercising the analysis pipeline without running trackers.
package synthetic

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/nvr-ai/go-trackbench/benchmark"
	"github.com/nvr-ai/go-trackbench/tracker"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stat is a normal distribution's parameters.
type Stat struct {
	Mean float64
	Std  float64
}

// Profile describes the hardware footprint of one tracker.
type Profile struct {
	Latency   Stat
	CPU       Stat
	RAM       Stat
	GPU       Stat
	GPUMemory Stat
}

// Profiles holds the generator parameters per tracker name.
var Profiles = map[string]Profile{
	tracker.CSRTName: {
		Latency:   Stat{40, 3},
		CPU:       Stat{32, 5},
		RAM:       Stat{150, 10},
		GPU:       Stat{0, 0},
		GPUMemory: Stat{0, 0},
	},
	tracker.OSTrackName: {
		Latency:   Stat{16, 8},
		CPU:       Stat{22, 8},
		RAM:       Stat{520, 80},
		GPU:       Stat{48, 12},
		GPUMemory: Stat{2100, 200},
	},
	tracker.SiamRPNName: {
		Latency:   Stat{26, 6},
		CPU:       Stat{28, 7},
		RAM:       Stat{310, 50},
		GPU:       Stat{32, 10},
		GPUMemory: Stat{1400, 150},
	},
	tracker.DiMPName: {
		Latency:   Stat{31, 7},
		CPU:       Stat{30, 6},
		RAM:       Stat{280, 40},
		GPU:       Stat{38, 8},
		GPUMemory: Stat{1600, 180},
	},
}

const (
	warmupFrames = 10
	warmupCPU    = 15
	warmupRAM    = 50
	spikeEvery   = 20
	spikeLatency = 1.5
	spikeCPU     = 1.3
)

// Options configures Generate.
type Options struct {
	// Frames per tracker (default: 300).
	Frames int
	// Seed makes the output reproducible.
	Seed uint64
}

// Generate produces one result per tracker in tracker.Names() order.
//
// Per frame it draws latency |N|, CPU clipped to [0, 100], RAM |N|, GPU
// clipped to [0, 100] and GPU memory |N| from the tracker's profile. The first
// ten frames get +15 CPU and +50 RAM; frames/20 distinct frames get latency
// x1.5 and CPU x1.3, with CPU clipped to 100 again.
//
// Arguments:
// - opts: Frame count and seed.
//
// Returns:
// - []*benchmark.Result: Results with frame series and summaries.
// - error: Error if a summary cannot be computed.
func Generate(opts Options) ([]*benchmark.Result, error) {
	if opts.Frames <= 0 {
		opts.Frames = benchmark.DefaultFrames
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	results := make([]*benchmark.Result, 0, len(tracker.Names()))
	for _, name := range tracker.Names() {
		profile := Profiles[name]
		frames := generateFrames(profile, opts.Frames, rng)

		summary, err := benchmark.Summarize(name, frames, profile.RAM.Mean)
		if err != nil {
			return nil, errors.Wrapf(err, "summarize %s", name)
		}

		slog.Info("generated tracker data",
			"tracker", name,
			"avg_fps", summary.AvgFPS,
			"avg_latency_ms", summary.AvgLatencyMS,
			"latency_variance", summary.LatencyVariance,
			"avg_cpu_percent", summary.AvgCPUPercent,
			"avg_ram_mb", summary.AvgRAMMB,
		)

		results = append(results, &benchmark.Result{Summary: summary, Frames: frames})
	}

	return results, nil
}

func draw(s Stat, n int, rng *rand.Rand) []float64 {
	dist := distuv.Normal{Mu: s.Mean, Sigma: s.Std, Src: rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

func abs(x []float64) []float64 {
	for i, v := range x {
		x[i] = math.Abs(v)
	}
	return x
}

func clip(x []float64, lo, hi float64) []float64 {
	for i, v := range x {
		x[i] = math.Max(lo, math.Min(hi, v))
	}
	return x
}

func generateFrames(p Profile, n int, rng *rand.Rand) benchmark.FrameData {
	frames := benchmark.FrameData{
		Latencies: abs(draw(p.Latency, n, rng)),
		CPUUsage:  clip(draw(p.CPU, n, rng), 0, 100),
		RAMUsage:  abs(draw(p.RAM, n, rng)),
		GPUUsage:  clip(draw(p.GPU, n, rng), 0, 100),
		GPUMemory: abs(draw(p.GPUMemory, n, rng)),
	}

	for i := 0; i < warmupFrames && i < n; i++ {
		frames.CPUUsage[i] += warmupCPU
		frames.RAMUsage[i] += warmupRAM
	}

	for _, i := range rng.Perm(n)[:n/spikeEvery] {
		frames.Latencies[i] *= spikeLatency
		frames.CPUUsage[i] *= spikeCPU
	}

	clip(frames.CPUUsage, 0, 100)
	return frames
}
