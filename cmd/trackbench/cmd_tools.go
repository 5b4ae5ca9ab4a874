package main

import (
	"github.com/nvr-ai/go-trackbench/benchmark"
	"github.com/nvr-ai/go-trackbench/charts"
	"github.com/nvr-ai/go-trackbench/synthetic"
	"github.com/nvr-ai/go-trackbench/video"
	"github.com/spf13/cobra"
)

func newSynthCmd() *cobra.Command {
	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "Write synthetic benchmark results with realistic tracker profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			frames, _ := cmd.Flags().GetInt("frames")
			seed, _ := cmd.Flags().GetUint64("seed")

			results, err := synthetic.Generate(synthetic.Options{Frames: frames, Seed: seed})
			if err != nil {
				return err
			}
			if _, err := benchmark.WriteResults(output, results); err != nil {
				return err
			}

			benchmark.PrintSummary(cmd.OutOrStdout(), results)
			return nil
		},
	}

	synthCmd.Flags().String("output", benchmark.DefaultOutputDir, "Output directory for results")
	synthCmd.Flags().Int("frames", benchmark.DefaultFrames, "Frames per tracker")
	synthCmd.Flags().Uint64("seed", 42, "Random seed")

	return synthCmd
}

func newPlotCmd() *cobra.Command {
	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot update vs pure tracker metrics from a comparison CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, _ := cmd.Flags().GetString("csv")
			out, _ := cmd.Flags().GetString("out")
			return renderComparison(cmd, csvPath, out)
		},
	}

	plotCmd.Flags().String("csv", "auc_compare.csv", "Comparison CSV")
	plotCmd.Flags().String("out", "plots", "Output directory for PNG files")

	return plotCmd
}

func renderComparison(cmd *cobra.Command, csvPath, out string) error {
	comparison, err := charts.ReadComparisonFile(csvPath)
	if err != nil {
		return err
	}

	written, err := charts.Render(comparison, out)
	if err != nil {
		return err
	}

	for _, path := range written {
		cmd.Println(path)
	}
	return nil
}

func newVideoCmd() *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Create the synthetic test video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			frames, _ := cmd.Flags().GetInt("frames")

			if err := video.CreateTestVideo(output, frames); err != nil {
				return err
			}
			cmd.Printf("Test video created: %s\n", output)
			return nil
		},
	}

	videoCmd.Flags().String("output", "test_videos/test.mp4", "Output video path")
	videoCmd.Flags().Int("frames", video.TestVideoFrames, "Number of frames")

	return videoCmd
}
