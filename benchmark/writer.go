package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Output file names.
const (
	SummaryCSVName      = "hardware_benchmark_summary.csv"
	FullJSONName        = "hardware_benchmark_full.json"
	frameDataNameSuffix = "_frame_data.csv"
)

// SummaryColumns is the header of the summary CSV.
var SummaryColumns = []string{
	"Tracker", "Avg_FPS", "Min_FPS", "Avg_Latency_ms", "Std_Latency_ms",
	"P95_Latency_ms", "P99_Latency_ms", "Latency_Variance", "Avg_CPU_%", "Max_CPU_%",
	"Avg_RAM_MB", "Max_RAM_MB", "Avg_GPU_%", "Max_GPU_%", "Avg_GPU_Memory_MB", "Max_GPU_Memory_MB",
}

// FrameColumns is the header of the per-tracker frame CSV.
var FrameColumns = []string{
	"latencies", "cpu_usage", "ram_usage", "gpu_usage", "gpu_memory", "tracker", "frame_number",
}

// Artifacts lists the files written by WriteResults.
type Artifacts struct {
	SummaryCSV string
	FullJSON   string
	// FrameCSVs maps tracker name to its frame data file.
	FrameCSVs map[string]string
}

// FrameDataFileName returns the frame CSV name for a tracker.
func FrameDataFileName(tracker string) string {
	return tracker + frameDataNameSuffix
}

// formatFloat writes the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s Summary) csvRecord() []string {
	return []string{
		s.Tracker,
		formatFloat(s.AvgFPS),
		formatFloat(s.MinFPS),
		formatFloat(s.AvgLatencyMS),
		formatFloat(s.StdLatencyMS),
		formatFloat(s.P95LatencyMS),
		formatFloat(s.P99LatencyMS),
		formatFloat(s.LatencyVariance),
		formatFloat(s.AvgCPUPercent),
		formatFloat(s.MaxCPUPercent),
		formatFloat(s.AvgRAMMB),
		formatFloat(s.MaxRAMMB),
		formatFloat(s.AvgGPUUtil),
		formatFloat(s.MaxGPUUtil),
		formatFloat(s.AvgGPUMemoryMB),
		formatFloat(s.MaxGPUMemoryMB),
	}
}

// WriteResults persists benchmark results to dir.
//
// It writes the summary CSV (one row per result, in order), the full JSON
// object keyed by tracker name without frame series, and one frame CSV per
// tracker. The directory is created when missing.
//
// Arguments:
// - dir: Output directory.
// - results: Completed tracker results.
//
// Returns:
// - *Artifacts: Paths of the written files.
// - error: Error if any file cannot be written.
func WriteResults(dir string, results []*Result) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	artifacts := &Artifacts{
		SummaryCSV: filepath.Join(dir, SummaryCSVName),
		FullJSON:   filepath.Join(dir, FullJSONName),
		FrameCSVs:  make(map[string]string, len(results)),
	}

	if err := writeFile(artifacts.SummaryCSV, func(w io.Writer) error {
		return WriteSummaryCSV(w, results)
	}); err != nil {
		return nil, errors.Wrap(err, "failed to save summary CSV")
	}
	slog.Info("summary saved", "path", artifacts.SummaryCSV)

	if err := writeFile(artifacts.FullJSON, func(w io.Writer) error {
		return WriteSummaryJSON(w, results)
	}); err != nil {
		return nil, errors.Wrap(err, "failed to save results JSON")
	}
	slog.Info("full results saved", "path", artifacts.FullJSON)

	for _, result := range results {
		path := filepath.Join(dir, FrameDataFileName(result.Tracker))
		if err := writeFile(path, func(w io.Writer) error {
			return WriteFrameCSV(w, result)
		}); err != nil {
			return nil, errors.Wrapf(err, "failed to save frame data for %s", result.Tracker)
		}
		artifacts.FrameCSVs[result.Tracker] = path
		slog.Info("frame data saved", "tracker", result.Tracker, "path", path)
	}

	return artifacts, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

// WriteSummaryCSV writes the header and one row per result.
func WriteSummaryCSV(w io.Writer, results []*Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryColumns); err != nil {
		return err
	}
	for _, result := range results {
		if err := cw.Write(result.Summary.csvRecord()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryJSON writes an object keyed by tracker name, in result order,
// indented by two spaces.
func WriteSummaryJSON(w io.Writer, results []*Result) error {
	summaries := orderedmap.New[string, Summary]()
	for _, result := range results {
		summaries.Set(result.Tracker, result.Summary)
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}

	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteFrameCSV writes a result's per-frame series.
func WriteFrameCSV(w io.Writer, result *Result) error {
	frames := &result.Frames
	if err := frames.validate(); err != nil && !errors.Is(err, ErrNoFrames) {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(FrameColumns); err != nil {
		return err
	}
	for i := range frames.Latencies {
		record := []string{
			formatFloat(frames.Latencies[i]),
			formatFloat(frames.CPUUsage[i]),
			formatFloat(frames.RAMUsage[i]),
			formatFloat(frames.GPUUsage[i]),
			formatFloat(frames.GPUMemory[i]),
			result.Tracker,
			strconv.Itoa(i),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrintSummary renders a console table of the main metrics.
func PrintSummary(w io.Writer, results []*Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"TRACKER", "FPS", "LATENCY MS", "P95 MS", "CPU %", "RAM MB", "GPU %", "GPU MEM MB"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)

	for _, r := range results {
		table.Append([]string{
			r.Tracker,
			fmt.Sprintf("%.2f", r.AvgFPS),
			fmt.Sprintf("%.2f ± %.2f", r.AvgLatencyMS, r.StdLatencyMS),
			fmt.Sprintf("%.2f", r.P95LatencyMS),
			fmt.Sprintf("%.1f", r.AvgCPUPercent),
			fmt.Sprintf("%.1f", r.AvgRAMMB),
			fmt.Sprintf("%.1f", r.AvgGPUUtil),
			fmt.Sprintf("%.1f", r.AvgGPUMemoryMB),
		})
	}
	table.Render()
}
