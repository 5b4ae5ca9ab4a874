package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/nvr-ai/go-trackbench/benchmark"
	"github.com/nvr-ai/go-trackbench/video"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark trackers on a video and write result files",
		Args:  cobra.NoArgs,
		RunE:  RunHandler,
	}

	runCmd.Flags().String("video", benchmark.DefaultVideo, "Path to test video or directory of frames (created when missing)")
	runCmd.Flags().Int("frames", benchmark.DefaultFrames, "Number of frames to process")
	runCmd.Flags().String("output", benchmark.DefaultOutputDir, "Output directory for results")
	runCmd.Flags().String("config", "", "YAML or JSON benchmark config")
	runCmd.Flags().Duration("cooldown", benchmark.DefaultCooldown, "Pause between trackers (also TRACKBENCH_COOLDOWN)")
	runCmd.Flags().StringSlice("trackers", nil, "Trackers to run, in order (default: all)")
	runCmd.Flags().Bool("no-gpu", false, "Skip GPU metrics (also TRACKBENCH_NO_GPU)")
	runCmd.Flags().Bool("progress", false, "Show a progress bar per tracker")

	return runCmd
}

// buildConfig layers explicitly set flags over the config file, which is
// read on top of the defaults and environment.
func buildConfig(cmd *cobra.Command) (*benchmark.Config, error) {
	flags := cmd.Flags()

	cfg := benchmark.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := benchmark.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flags.Changed("video") {
		cfg.Video, _ = flags.GetString("video")
	}
	if flags.Changed("frames") {
		cfg.Frames, _ = flags.GetInt("frames")
	}
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("cooldown") {
		cfg.Cooldown.Duration, _ = flags.GetDuration("cooldown")
	}
	if noGPU, _ := flags.GetBool("no-gpu"); noGPU {
		cfg.DisableGPU = true
	}
	if names, _ := flags.GetStringSlice("trackers"); len(names) > 0 {
		if err := cfg.SelectTrackers(names); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

// RunHandler runs the hardware benchmark.
func RunHandler(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	var progress io.Writer
	if show, _ := cmd.Flags().GetBool("progress"); show {
		progress = cmd.ErrOrStderr()
	}

	results, err := runBenchmark(cmd.Context(), cfg, progress)
	if err != nil {
		return err
	}

	benchmark.PrintSummary(cmd.OutOrStdout(), results)
	cmd.Printf("\nResults saved to %s\n", cfg.OutputDir)
	return nil
}

// ensureVideo creates the synthetic test video when path does not exist.
func ensureVideo(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", path)
	}

	slog.Info("video not found, creating synthetic test video", "path", path)
	return video.CreateTestVideo(path, video.TestVideoFrames)
}

func runBenchmark(ctx context.Context, cfg *benchmark.Config, progress io.Writer) ([]*benchmark.Result, error) {
	if err := ensureVideo(cfg.Video); err != nil {
		return nil, err
	}

	var opts []benchmark.HarnessOption
	if progress != nil {
		opts = append(opts, benchmark.WithProgress(progress))
	}

	harness, err := benchmark.NewHarness(*cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer harness.Close()

	return harness.RunAll(ctx)
}
