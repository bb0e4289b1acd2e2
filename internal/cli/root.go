// Package cli wires the lfz commands together. Running lfz with no
// subcommand builds, matching the most common invocation.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/lfz/internal/ui"
)

var debugFlag bool

// NewRootCmd builds the lfz command tree.
func NewRootCmd() *cobra.Command {
	buildOpts := &buildOptions{}

	root := &cobra.Command{
		Use:           "lfz",
		Short:         "Build ZMK keyboard firmware locally",
		Long:          "lfz builds ZMK firmware for every target in your keyboard's build.yaml,\nin parallel, inside the official build container. No GitHub Actions wait.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, buildOpts)
		},
	}
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	// The root command doubles as the build command.
	addBuildFlags(root, buildOpts)

	root.AddCommand(
		newBuildCmd(),
		newListCmd(),
		newUpdateCmd(),
		newCleanCmd(),
		newPurgeCmd(),
		newSizeCmd(),
		newMonitorCmd(),
		newHistoryCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmtErr(err)
		return 1
	}
	return 0
}

func fmtErr(err error) {
	ui.Errorf(os.Stderr, "%v", err)
}

func configureLogging() {
	level := slog.LevelWarn
	if debugFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
