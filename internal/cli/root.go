// Package cli implements the campaigncache command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitUsageError = 2
)

// Run executes the command tree with args and returns an exit code.
func Run(args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return ExitSuccess
}

// NewRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package globals.
func NewRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "campaigncache",
		Short:        "Drive and inspect the sharded campaign cache",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	logger := func() (*zap.Logger, error) {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		return l, nil
	}

	root.AddCommand(newBenchCmd(logger))
	root.AddCommand(newInspectCmd())
	return root
}
