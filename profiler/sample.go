// Package profiler samples process and GPU resource usage and tracks per-frame timings.
package profiler

import "time"

// HardwareSample is a point-in-time snapshot of process and GPU usage.
type HardwareSample struct {
	Timestamp        time.Time `json:"timestamp"`
	CPUPercent       float64   `json:"cpu_percent"`
	RAMMB            float64   `json:"ram_mb"`
	RAMPercent       float64   `json:"ram_percent"`
	GPUUtil          float64   `json:"gpu_util"`
	GPUMemoryMB      float64   `json:"gpu_memory_mb"`
	GPUMemoryPercent float64   `json:"gpu_memory_percent"`
	GPUTemp          float64   `json:"gpu_temp"`
}

// GPUStats holds the readings of a single GPU.
type GPUStats struct {
	// Util is the GPU utilization in percent.
	Util float64
	// MemoryUsedMB is the device memory in use.
	MemoryUsedMB float64
	// MemoryTotalMB is the device memory capacity.
	MemoryTotalMB float64
	// TempC is the core temperature in degrees Celsius.
	TempC float64
}

// MemoryPercent returns used memory as a percentage of the total, or 0 when the
// total is unknown.
func (g GPUStats) MemoryPercent() float64 {
	if g.MemoryTotalMB <= 0 {
		return 0
	}
	return g.MemoryUsedMB / g.MemoryTotalMB * 100
}

// RSS returns the resident memory in bytes.
func (s HardwareSample) RSS() uint64 {
	return uint64(s.RAMMB * bytesPerMB)
}

func (s HardwareSample) withGPU(g GPUStats) HardwareSample {
	s.GPUUtil = g.Util
	s.GPUMemoryMB = g.MemoryUsedMB
	s.GPUMemoryPercent = g.MemoryPercent()
	s.GPUTemp = g.TempC
	return s
}
