package profiler

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	cpu      float64
	rss      uint64
	memPct   float32
	cpuErr   error
	memErr   error
	interval time.Duration
}

func (f *fakeProcess) Percent(interval time.Duration) (float64, error) {
	f.interval = interval
	return f.cpu, f.cpuErr
}

func (f *fakeProcess) MemoryInfo() (*process.MemoryInfoStat, error) {
	if f.memErr != nil {
		return nil, f.memErr
	}
	return &process.MemoryInfoStat{RSS: f.rss}, nil
}

func (f *fakeProcess) MemoryPercent() (float32, error) {
	return f.memPct, f.memErr
}

type fakeGPU struct {
	stats  GPUStats
	err    error
	closed bool
}

func (f *fakeGPU) Read() (GPUStats, error) { return f.stats, f.err }

func (f *fakeGPU) Close() error {
	f.closed = true
	return nil
}

func TestSamplerReadsProcessAndGPU(t *testing.T) {
	proc := &fakeProcess{cpu: 42.5, rss: 256 * bytesPerMB, memPct: 3.5}
	gpu := &fakeGPU{stats: GPUStats{Util: 55, MemoryUsedMB: 2048, MemoryTotalMB: 8192, TempC: 61}}

	s := newSampler(proc, SamplerOptions{GPU: gpu})
	sample := s.Sample()

	assert.Equal(t, DefaultCPUInterval, proc.interval)
	assert.Equal(t, 42.5, sample.CPUPercent)
	assert.Equal(t, 256.0, sample.RAMMB)
	assert.InDelta(t, 3.5, sample.RAMPercent, 1e-6)
	assert.Equal(t, 55.0, sample.GPUUtil)
	assert.Equal(t, 2048.0, sample.GPUMemoryMB)
	assert.Equal(t, 25.0, sample.GPUMemoryPercent)
	assert.Equal(t, 61.0, sample.GPUTemp)
	assert.True(t, s.GPUEnabled())

	require.NoError(t, s.Close())
	assert.True(t, gpu.closed)
}

func TestSamplerDegradesOnErrors(t *testing.T) {
	proc := &fakeProcess{cpuErr: errors.New("boom"), memErr: errors.New("boom")}
	gpu := &fakeGPU{err: errors.New("driver gone")}

	s := newSampler(proc, SamplerOptions{GPU: gpu, CPUInterval: time.Millisecond})
	sample := s.Sample()
	again := s.Sample()

	for _, got := range []HardwareSample{sample, again} {
		assert.Zero(t, got.CPUPercent)
		assert.Zero(t, got.RAMMB)
		assert.Zero(t, got.GPUUtil)
		assert.Zero(t, got.GPUMemoryMB)
		assert.Zero(t, got.GPUMemoryPercent)
		assert.Zero(t, got.GPUTemp)
	}
	assert.Equal(t, time.Millisecond, proc.interval)
}

func TestSamplerDisableGPU(t *testing.T) {
	gpu := &fakeGPU{stats: GPUStats{Util: 90}}
	s := newSampler(&fakeProcess{}, SamplerOptions{DisableGPU: true, GPU: gpu})

	assert.False(t, s.GPUEnabled())
	assert.Zero(t, s.Sample().GPUUtil)
}

func TestGPUStatsMemoryPercent(t *testing.T) {
	assert.Zero(t, GPUStats{MemoryUsedMB: 10}.MemoryPercent())
	assert.Equal(t, 50.0, GPUStats{MemoryUsedMB: 10, MemoryTotalMB: 20}.MemoryPercent())
}

func TestRecorderMetrics(t *testing.T) {
	rec := NewRecorder(3)
	for _, v := range []float64{1, 2, 3, 4} {
		rec.RecordMetric("fps", v)
	}

	m, ok := rec.Metric("fps")
	require.True(t, ok)
	assert.Equal(t, 3, m.Samples)
	assert.Equal(t, 3.0, m.Avg) // window holds 2,3,4
	assert.Equal(t, 1.0, m.Min)
	assert.Equal(t, 4.0, m.Max)
	assert.Equal(t, 4.0, m.Last)

	_, ok = rec.Metric("missing")
	assert.False(t, ok)
}

func TestRecorderOperations(t *testing.T) {
	rec := NewRecorder(0)
	rec.RecordOperation("update", 10*time.Millisecond)
	rec.RecordOperation("update", 30*time.Millisecond)

	done := rec.StartOperation("read")
	elapsed := done()
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	op, ok := rec.Operation("update")
	require.True(t, ok)
	assert.Equal(t, int64(2), op.Count)
	assert.Equal(t, 20*time.Millisecond, op.Avg)
	assert.Equal(t, 10*time.Millisecond, op.Min)
	assert.Equal(t, 30*time.Millisecond, op.Max)

	var buf bytes.Buffer
	rec.RecordMetric("cpu", 12)
	rec.WriteReport(&buf)
	assert.Contains(t, buf.String(), "OPERATION TIMINGS")
	assert.Contains(t, buf.String(), "update: avg=20ms")
	assert.Contains(t, buf.String(), "cpu: avg=12.00")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
	assert.Equal(t, "256.0 MB", FormatBytes(HardwareSample{RAMMB: 256}.RSS()))
}
