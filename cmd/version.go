package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information, set via -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "session-viewer %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
