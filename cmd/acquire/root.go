package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

// configDir is where the .acquire.yaml search starts.
var configDir = "."

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire - uncertainty scoring for active learning",
		Long: `Acquire scores class-probability distributions by their uncertainty.

It computes Shannon entropy or margin of confidence per sample, gates
predictions with a critic, picks samples for labeling, and reports
classification metrics.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory to start the .acquire.yaml search from")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newCriticCommand())
	cmd.AddCommand(newSelectCommand())
	cmd.AddCommand(newMetricsCommand())
	cmd.AddCommand(newCheckCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
