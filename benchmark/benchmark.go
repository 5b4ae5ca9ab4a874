package benchmark

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/nvr-ai/go-trackbench/common"
	"github.com/nvr-ai/go-trackbench/envconfig"
	"github.com/nvr-ai/go-trackbench/profiler"
	"github.com/nvr-ai/go-trackbench/tracker"
	"github.com/nvr-ai/go-trackbench/video"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"
)

// ProgressInterval is how often, in frames, a progress line is logged.
const ProgressInterval = 50

var (
	// ErrSourceOpen is returned when a tracker's video cannot be opened.
	ErrSourceOpen = errors.New("cannot open video")
	// ErrFirstFrame is returned when the first frame cannot be read.
	ErrFirstFrame = errors.New("cannot read first frame")
	// ErrNoFrames is returned when a run processes no frames after the first.
	ErrNoFrames = errors.New("no frames processed")
)

// HardwareSampler takes snapshots of process and GPU usage.
type HardwareSampler interface {
	Sample() profiler.HardwareSample
	Close() error
}

// gpuReporter is implemented by samplers that know whether a GPU is attached.
type gpuReporter interface {
	GPUEnabled() bool
}

// TrackerFactory builds the tracker for one configured entry.
type TrackerFactory func(tc TrackerConfig) (tracker.Tracker, error)

// DefaultTrackerFactory builds trackers through tracker.New.
func DefaultTrackerFactory(tc TrackerConfig) (tracker.Tracker, error) {
	var opts []tracker.Option
	if tc.Seed != 0 {
		opts = append(opts, tracker.WithSeed(tc.Seed))
	}
	if tc.Model != "" {
		opts = append(opts, tracker.WithModel(tc.Model))
	}
	return tracker.New(tc.Name, opts...)
}

// Harness runs trackers over a video and collects per-frame measurements.
type Harness struct {
	cfg         Config
	open        video.Opener
	sampler     HardwareSampler
	ownsSampler bool
	newTracker  TrackerFactory
	progress    io.Writer
	sleep       func(ctx context.Context, d time.Duration) error
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithOpener sets how video sources are opened (default: video.Open).
func WithOpener(open video.Opener) HarnessOption {
	return func(h *Harness) {
		h.open = open
	}
}

// WithSampler sets the hardware sampler. The harness does not close it.
func WithSampler(s HardwareSampler) HarnessOption {
	return func(h *Harness) {
		h.sampler = s
	}
}

// WithTrackerFactory sets how trackers are created.
func WithTrackerFactory(f TrackerFactory) HarnessOption {
	return func(h *Harness) {
		h.newTracker = f
	}
}

// WithProgress renders a frame progress bar per tracker to w.
func WithProgress(w io.Writer) HarnessOption {
	return func(h *Harness) {
		h.progress = w
	}
}

// withSleep replaces the cool-down wait in tests.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) HarnessOption {
	return func(h *Harness) {
		h.sleep = sleep
	}
}

// NewHarness creates a benchmark harness.
//
// When no sampler is supplied a profiler.Sampler is opened for the current
// process; GPU collection is skipped when the config or TRACKBENCH_NO_GPU asks
// for it.
//
// Arguments:
// - cfg: Benchmark configuration; it is validated here.
// - opts: Harness options.
//
// Returns:
// - *Harness: The harness; Close releases the sampler it opened.
// - error: Error if the configuration is invalid or the sampler cannot start.
//
// @example
// h, err := benchmark.NewHarness(*benchmark.DefaultConfig())
// defer h.Close()
// results, err := h.RunAll(ctx)
func NewHarness(cfg Config, opts ...HarnessOption) (*Harness, error) {
	cfg.Trackers = append([]TrackerConfig(nil), cfg.Trackers...)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid benchmark config")
	}

	h := &Harness{
		cfg:        cfg,
		open:       video.Open,
		newTracker: DefaultTrackerFactory,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.sampler == nil {
		sampler, err := profiler.NewSampler(profiler.SamplerOptions{
			CPUInterval: cfg.CPUInterval.Duration,
			DisableGPU:  cfg.DisableGPU || envconfig.NoGPU(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to start hardware sampler")
		}
		h.sampler = sampler
		h.ownsSampler = true
	}

	slog.Info("hardware sampler ready", "gpu_metrics", h.GPUEnabled())

	return h, nil
}

// GPUEnabled reports whether the sampler reads a real GPU. Samplers that
// cannot tell are reported as having none.
func (h *Harness) GPUEnabled() bool {
	if r, ok := h.sampler.(gpuReporter); ok {
		return r.GPUEnabled()
	}
	return false
}

// Config returns the validated configuration.
func (h *Harness) Config() Config {
	return h.cfg
}

// Close releases the sampler opened by NewHarness.
func (h *Harness) Close() error {
	if h.ownsSampler {
		return h.sampler.Close()
	}
	return nil
}

func (h *Harness) trackerConfig(name string) TrackerConfig {
	canonical := tracker.Canonical(name)
	for _, tc := range h.cfg.Trackers {
		if tc.Name == canonical {
			return tc
		}
	}
	return TrackerConfig{Name: canonical}
}

// RunTracker benchmarks one tracker.
//
// The tracker is initialized on the first frame with the centered box
// (w/4, h/4, w/2, h/2), a baseline sample is taken, and then up to
// min(Frames, source frame count) further frames are processed. Only the
// Update call is timed; hardware is sampled before and after it. Per-frame RAM
// is the post-update RSS minus the baseline.
//
// Arguments:
// - ctx: Cancels the run between frames.
// - name: Tracker name; configured entries supply video, model and seed.
//
// Returns:
// - *Result: Summary and frame series.
// - error: ErrSourceOpen, ErrFirstFrame, ErrNoFrames (wrapped), a tracker
// construction error, or the context error.
func (h *Harness) RunTracker(ctx context.Context, name string) (*Result, error) {
	tc := h.trackerConfig(name)
	if tc.Name == "" {
		return nil, errors.Errorf("unknown tracker %q", name)
	}
	path := h.cfg.VideoFor(tc)

	slog.Info("benchmarking tracker", "tracker", tc.Name, "video", path)

	trk, err := h.newTracker(tc)
	if err != nil {
		return nil, errors.Wrapf(err, "create tracker %s", tc.Name)
	}
	defer trk.Close()

	src, err := h.open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceOpen, "%s: %v", path, err)
	}
	defer src.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	if !src.Read(&frame) {
		return nil, errors.Wrapf(ErrFirstFrame, "%s", path)
	}

	box := common.CenterBox(frame.Cols(), frame.Rows())
	slog.Info("initializing tracker", "tracker", tc.Name, "box", box.String())
	if !trk.Init(frame, box) {
		slog.Warn("tracker init reported failure", "tracker", tc.Name)
	}

	baseline := h.sampler.Sample()
	slog.Info("baseline", "tracker", tc.Name, "cpu_percent", baseline.CPUPercent, "rss", profiler.FormatBytes(baseline.RSS()))

	maxFrames := h.cfg.Frames
	if count := src.FrameCount(); count > 0 && count < maxFrames {
		maxFrames = count
	}
	slog.Info("processing frames", "tracker", tc.Name, "frames", maxFrames)

	bar := h.newProgressBar(tc.Name, maxFrames)
	recorder := profiler.NewRecorder(maxFrames)

	var data FrameData
	for data.Len() < maxFrames {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "tracker %s interrupted", tc.Name)
		}

		if !src.Read(&frame) {
			break
		}

		h.sampler.Sample()
		done := recorder.StartOperation("update")
		trk.Update(frame)
		elapsed := done()
		after := h.sampler.Sample()

		latency := float64(elapsed.Nanoseconds()) / 1e6
		data.Append(latency, after.CPUPercent, after.RAMMB-baseline.RAMMB, after.GPUUtil, after.GPUMemoryMB)
		recorder.RecordMetric("cpu_percent", after.CPUPercent)
		recorder.RecordMetric("ram_mb", after.RAMMB)

		if bar != nil {
			_ = bar.Add(1)
		}

		if n := data.Len(); n%ProgressInterval == 0 {
			update, _ := recorder.Operation("update")
			slog.Info("progress",
				"tracker", tc.Name,
				"frame", n,
				"of", maxFrames,
				"fps", safeDiv(float64(n), update.Total.Seconds()),
				"latency_ms", latency,
				"cpu_percent", after.CPUPercent,
			)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		var report bytes.Buffer
		recorder.WriteReport(&report)
		slog.Debug("tracker timings", "tracker", tc.Name, "report", report.String())
	}

	summary, err := Summarize(tc.Name, data, baseline.RAMMB)
	if err != nil {
		return nil, err
	}

	slog.Info("tracker results",
		"tracker", tc.Name,
		"avg_fps", summary.AvgFPS,
		"avg_latency_ms", summary.AvgLatencyMS,
		"std_latency_ms", summary.StdLatencyMS,
		"p95_latency_ms", summary.P95LatencyMS,
		"avg_cpu_percent", summary.AvgCPUPercent,
		"avg_ram_mb", summary.AvgRAMMB,
		"avg_gpu_util", summary.AvgGPUUtil,
		"avg_gpu_memory_mb", summary.AvgGPUMemoryMB,
	)

	return &Result{Summary: summary, Frames: data}, nil
}

func (h *Harness) newProgressBar(name string, total int) *progressbar.ProgressBar {
	if h.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(h.progress),
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
