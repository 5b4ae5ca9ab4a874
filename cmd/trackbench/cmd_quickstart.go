package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/nvr-ai/go-trackbench/benchmark"
	"github.com/nvr-ai/go-trackbench/profiler"
	"github.com/nvr-ai/go-trackbench/tracker"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

const rule = "============================================================"

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	heading  = color.New(color.Bold)
)

func newQuickstartCmd() *cobra.Command {
	quickstartCmd := &cobra.Command{
		Use:   "quickstart",
		Short: "Check dependencies, run the full benchmark and print analysis steps",
		Args:  cobra.NoArgs,
		RunE:  QuickstartHandler,
	}

	quickstartCmd.Flags().String("root", ".", "Project root holding test_videos/, results/, plots/ and scripts/")
	quickstartCmd.Flags().Int("frames", benchmark.DefaultFrames, "Number of frames to process")
	quickstartCmd.Flags().Bool("matlab", false, "Run the MATLAB analysis after the benchmark")
	quickstartCmd.Flags().Bool("progress", true, "Show a progress bar per tracker")

	return quickstartCmd
}

// QuickstartHandler runs the whole pipeline: dependency check, benchmark,
// optional comparison plots and MATLAB analysis.
func QuickstartHandler(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	frames, _ := cmd.Flags().GetInt("frames")
	matlab, _ := cmd.Flags().GetBool("matlab")
	showProgress, _ := cmd.Flags().GetBool("progress")
	out := cmd.OutOrStdout()

	root, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrap(err, "resolve project root")
	}

	videoPath := filepath.Join(root, "test_videos", "test.mp4")
	resultsPath := filepath.Join(root, "results")
	plotsPath := filepath.Join(root, "plots")
	scriptsPath := filepath.Join(root, "scripts")

	heading.Fprintln(out, "\nCSRT vs Modern Trackers Hardware Benchmark")

	fmt.Fprintln(out, "\n[1/3] Checking dependencies...")
	checkDependencies(out)

	fmt.Fprintln(out, "\n[2/3] Running hardware benchmark...")
	fmt.Fprintln(out, "This will take a few minutes...")
	for _, dir := range []string{filepath.Dir(videoPath), resultsPath, plotsPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}

	cfg := benchmark.DefaultConfig()
	cfg.Video = videoPath
	cfg.Frames = frames
	cfg.OutputDir = resultsPath

	var progress io.Writer
	if showProgress {
		progress = cmd.ErrOrStderr()
	}

	results, err := runBenchmark(cmd.Context(), cfg, progress)
	if err != nil {
		fmt.Fprintf(out, "%s Benchmark failed: %v\n", failMark, err)
		return err
	}
	fmt.Fprintf(out, "%s Hardware benchmark completed successfully\n", okMark)
	benchmark.PrintSummary(out, results)

	if comparison := filepath.Join(root, "auc_compare.csv"); fileExists(comparison) {
		if err := renderComparison(cmd, comparison, plotsPath); err != nil {
			fmt.Fprintf(out, "%s Comparison plots failed: %v\n", failMark, err)
		} else {
			fmt.Fprintf(out, "%s Comparison plots saved to %s\n", okMark, plotsPath)
		}
	}

	fmt.Fprintln(out, "\n[3/3] MATLAB Analysis")
	fmt.Fprintf(out, "\nBenchmark complete! Results saved to:\n  - %s\n", resultsPath)
	fmt.Fprintln(out, "\nTo generate plots, run MATLAB:")
	fmt.Fprintln(out, "  1. Open MATLAB")
	fmt.Fprintf(out, "  2. cd %s\n", scriptsPath)
	fmt.Fprintln(out, "  3. Run: analyze_hardware_matlab")
	fmt.Fprintln(out, "\nOr run manually:")
	fmt.Fprintf(out, "  matlab -batch \"%s\"\n", matlabBatch(scriptsPath))

	if matlab {
		if err := runMATLAB(cmd, scriptsPath); err != nil {
			fmt.Fprintf(out, "%s MATLAB Analysis failed: %v\n", failMark, err)
		} else {
			fmt.Fprintf(out, "%s MATLAB Analysis completed successfully\n", okMark)
		}
	}

	fmt.Fprintf(out, "\n%s\nBENCHMARK COMPLETE\n%s\n", rule, rule)
	fmt.Fprintf(out, "  CSV data: %s\n  Plots:    %s\n", resultsPath, plotsPath)
	fmt.Fprintln(out, "\nKey files:")
	fmt.Fprintf(out, "  %s  main results\n", benchmark.SummaryCSVName)
	fmt.Fprintf(out, "  %s  per-tracker metrics\n", benchmark.FullJSONName)
	fmt.Fprintf(out, "  %s  detailed frame data\n", benchmark.FrameDataFileName("*"))

	return nil
}

func checkDependencies(out io.Writer) {
	fmt.Fprintf(out, "  %s OpenCV %s (gocv %s)\n", okMark, gocv.OpenCVVersion(), gocv.Version())

	if gpu, err := profiler.OpenNVML(); err != nil {
		fmt.Fprintf(out, "  %s NVML: %v (GPU metrics will be zero)\n", failMark, err)
	} else {
		gpu.Close()
		fmt.Fprintf(out, "  %s NVML: GPU metrics available\n", okMark)
	}

	if version, err := tracker.RuntimeVersion(); err != nil {
		fmt.Fprintf(out, "  %s ONNX Runtime: %v (checkpoints will not be probed)\n", failMark, err)
	} else {
		fmt.Fprintf(out, "  %s ONNX Runtime %s\n", okMark, version)
	}

	if _, err := exec.LookPath("matlab"); err != nil {
		fmt.Fprintf(out, "  %s MATLAB not found on PATH\n", failMark)
	} else {
		fmt.Fprintf(out, "  %s MATLAB found\n", okMark)
	}
}

func matlabBatch(scriptsPath string) string {
	return fmt.Sprintf("cd('%s'); analyze_hardware_matlab", strings.ReplaceAll(scriptsPath, "'", "''"))
}

func runMATLAB(cmd *cobra.Command, scriptsPath string) error {
	matlab := exec.CommandContext(cmd.Context(), "matlab", "-batch", matlabBatch(scriptsPath))
	matlab.Stdout = cmd.OutOrStdout()
	matlab.Stderr = cmd.ErrOrStderr()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\nMATLAB Analysis\n%s\nRunning: %s\n", rule, rule, strings.Join(matlab.Args, " "))
	return matlab.Run()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
