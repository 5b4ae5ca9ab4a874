// Command trackbench benchmarks visual object trackers and plots comparisons.
package main

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/nvr-ai/go-trackbench/envconfig"
	"github.com/spf13/cobra"
)

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "trackbench",
		Short:         "Tracker hardware benchmark",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(cmd.ErrOrStderr(), verbose)
			slog.Debug("environment", "vars", envconfig.Values())
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "Enable debug logging (also TRACKBENCH_DEBUG=1)")

	rootCmd.AddCommand(
		newRunCmd(),
		newSynthCmd(),
		newPlotCmd(),
		newVideoCmd(),
		newQuickstartCmd(),
		newEnvCmd(),
	)

	return rootCmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := envconfig.LogLevel()
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	})

	slog.SetDefault(slog.New(handler))
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show environment variables read by trackbench",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			vars := envconfig.AsMap()
			for _, name := range []string{"TRACKBENCH_DEBUG", "TRACKBENCH_NO_GPU", "TRACKBENCH_COOLDOWN", "ONNXRUNTIME_SHARED_LIBRARY_PATH"} {
				v := vars[name]
				cmd.Printf("%s=%v\t%s\n", v.Name, v.Value, v.Description)
			}
		},
	}
}
