package profiler

import (
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
)

const bytesPerMB = 1024 * 1024

// DefaultCPUInterval is the window over which process CPU usage is measured.
const DefaultCPUInterval = 10 * time.Millisecond

// processStats is the subset of *process.Process the sampler reads.
type processStats interface {
	Percent(interval time.Duration) (float64, error)
	MemoryInfo() (*process.MemoryInfoStat, error)
	MemoryPercent() (float32, error)
}

// SamplerOptions configures a Sampler.
type SamplerOptions struct {
	// CPUInterval is how long each CPU measurement blocks (default: 10ms).
	CPUInterval time.Duration
	// DisableGPU turns GPU collection off; GPU fields are reported as zero.
	DisableGPU bool
	// GPU overrides GPU discovery. When nil and DisableGPU is false, NVML is tried.
	GPU GPUReader
}

// Sampler reads resource usage of the current process and the first GPU.
//
// Sampling never fails: unreadable fields are reported as zero.
type Sampler struct {
	proc        processStats
	gpu         GPUReader
	cpuInterval time.Duration
	gpuWarned   bool
}

// NewSampler creates a sampler bound to the running process.
//
// GPU discovery happens once here. If NVML cannot be loaded the sampler logs a
// single warning and reports zero GPU metrics for its whole lifetime.
//
// Arguments:
// - opts: Configuration options for the sampler.
//
// Returns:
// - The sampler, or an error if the process handle cannot be opened.
//
// @example
// sampler, err := profiler.NewSampler(profiler.SamplerOptions{})
// defer sampler.Close()
// sample := sampler.Sample()
func NewSampler(opts SamplerOptions) (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open process handle")
	}

	return newSampler(proc, opts), nil
}

func newSampler(proc processStats, opts SamplerOptions) *Sampler {
	if opts.CPUInterval <= 0 {
		opts.CPUInterval = DefaultCPUInterval
	}

	gpu := opts.GPU
	switch {
	case opts.DisableGPU:
		gpu = NoGPU()
	case gpu == nil:
		reader, err := OpenNVML()
		if err != nil {
			slog.Warn("GPU metrics unavailable, reporting zeros", "error", err)
			gpu = NoGPU()
		} else {
			gpu = reader
		}
	}

	return &Sampler{
		proc:        proc,
		gpu:         gpu,
		cpuInterval: opts.CPUInterval,
	}
}

// GPUEnabled reports whether GPU readings come from a real device.
func (s *Sampler) GPUEnabled() bool {
	_, none := s.gpu.(noGPU)
	return !none
}

// Sample takes a snapshot of the current process and first GPU.
//
// The call blocks for the configured CPU interval.
func (s *Sampler) Sample() HardwareSample {
	sample := HardwareSample{Timestamp: time.Now()}

	if cpu, err := s.proc.Percent(s.cpuInterval); err == nil {
		sample.CPUPercent = cpu
	} else {
		slog.Debug("cpu sample failed", "error", err)
	}

	if mem, err := s.proc.MemoryInfo(); err == nil && mem != nil {
		sample.RAMMB = float64(mem.RSS) / bytesPerMB
	} else if err != nil {
		slog.Debug("memory sample failed", "error", err)
	}

	if pct, err := s.proc.MemoryPercent(); err == nil {
		sample.RAMPercent = float64(pct)
	}

	stats, err := s.gpu.Read()
	if err != nil {
		// One warning per sampler keeps a flaky driver from flooding the log.
		if !s.gpuWarned {
			slog.Warn("GPU metrics error", "error", err)
			s.gpuWarned = true
		} else {
			slog.Debug("GPU metrics error", "error", err)
		}
		return sample
	}

	return sample.withGPU(stats)
}

// Close releases the GPU handle.
func (s *Sampler) Close() error {
	return s.gpu.Close()
}
