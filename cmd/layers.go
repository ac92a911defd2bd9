package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/report"
)

func layersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List layers, their renderer actions and default renderers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			report.NewTableRenderer(cmd.OutOrStdout()).Catalog(layers.Catalog())
		},
	}
}
