package profiler

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// MetricTracker tracks running statistics for a named metric.
type MetricTracker struct {
	name   string
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// TimeTracker tracks timing statistics for a named operation.
type TimeTracker struct {
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// MetricStats is a read-only view of a MetricTracker.
type MetricStats struct {
	Name    string
	Avg     float64
	Min     float64
	Max     float64
	Last    float64
	Samples int
}

// OperationStats is a read-only view of a TimeTracker.
type OperationStats struct {
	Name  string
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Total time.Duration
	Count int64
}

// Recorder accumulates named metrics and operation timings for one tracker run.
//
// The harness drives it from a single goroutine, so it carries no locks. Each
// metric keeps at most maxSamples values; older values are dropped from the
// window while min/max/count cover the whole run. Operations keep only
// running totals.
type Recorder struct {
	startTime      time.Time
	maxSamples     int
	customMetrics  map[string]*MetricTracker
	operationTimes map[string]*TimeTracker
}

// NewRecorder creates a recorder.
//
// Arguments:
// - maxSamples: Maximum number of values kept per metric (default: 600).
//
// Returns:
// - A configured Recorder instance
func NewRecorder(maxSamples int) *Recorder {
	if maxSamples <= 0 {
		maxSamples = 600
	}

	return &Recorder{
		startTime:      time.Now(),
		maxSamples:     maxSamples,
		customMetrics:  make(map[string]*MetricTracker),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (r *Recorder) RecordMetric(name string, value float64) {
	tracker, exists := r.customMetrics[name]
	if !exists {
		tracker = &MetricTracker{
			name:   name,
			values: make([]float64, 0, r.maxSamples),
			min:    value,
			max:    value,
		}
		r.customMetrics[name] = tracker
	}

	tracker.values = append(tracker.values, value)
	tracker.sum += value
	if len(tracker.values) > r.maxSamples {
		tracker.sum -= tracker.values[0]
		tracker.values = tracker.values[1:]
	}

	tracker.count++

	if value < tracker.min {
		tracker.min = value
	}
	if value > tracker.max {
		tracker.max = value
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes; it returns the elapsed time.
//
// @example
// done := rec.StartOperation("update")
// tracker.Update(frame)
// latency := done()
func (r *Recorder) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		duration := time.Since(start)
		r.RecordOperation(name, duration)
		return duration
	}
}

// RecordOperation records the completion time of an operation.
func (r *Recorder) RecordOperation(name string, duration time.Duration) {
	tracker, exists := r.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		r.operationTimes[name] = tracker
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Metric returns the statistics of a metric over the current window.
func (r *Recorder) Metric(name string) (MetricStats, bool) {
	tracker, ok := r.customMetrics[name]
	if !ok || len(tracker.values) == 0 {
		return MetricStats{}, false
	}

	return MetricStats{
		Name:    name,
		Avg:     tracker.sum / float64(len(tracker.values)),
		Min:     tracker.min,
		Max:     tracker.max,
		Last:    tracker.values[len(tracker.values)-1],
		Samples: len(tracker.values),
	}, true
}

// Operation returns the timing statistics of an operation over the whole run.
func (r *Recorder) Operation(name string) (OperationStats, bool) {
	tracker, ok := r.operationTimes[name]
	if !ok || tracker.count == 0 {
		return OperationStats{}, false
	}

	return OperationStats{
		Name:  name,
		Avg:   tracker.totalTime / time.Duration(tracker.count),
		Min:   tracker.minTime,
		Max:   tracker.maxTime,
		Total: tracker.totalTime,
		Count: tracker.count,
	}, true
}

// WriteReport writes a status report of every metric and operation.
func (r *Recorder) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "Uptime: %v\n", time.Since(r.startTime).Truncate(time.Millisecond))

	if len(r.customMetrics) > 0 {
		fmt.Fprintf(w, "\nMETRICS:\n")
		for _, name := range sortedKeys(r.customMetrics) {
			if m, ok := r.Metric(name); ok {
				fmt.Fprintf(w, "  %s: avg=%.2f, min=%.2f, max=%.2f, samples=%d\n",
					name, m.Avg, m.Min, m.Max, m.Samples)
			}
		}
	}

	if len(r.operationTimes) > 0 {
		fmt.Fprintf(w, "\nOPERATION TIMINGS:\n")
		for _, name := range sortedKeys(r.operationTimes) {
			if op, ok := r.Operation(name); ok {
				fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
					name, op.Avg.Truncate(time.Microsecond),
					op.Min.Truncate(time.Microsecond),
					op.Max.Truncate(time.Microsecond),
					op.Count)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatBytes formats byte counts in human-readable format.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
