package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/logic"
)

// NewExtractCommand creates a new cobra command for the extract subcommand.
func NewExtractCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract [flags] archive",
		Aliases: []string{"x"},
		Short:   "Extract an archive",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Extract(cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("dest", "d", ".", "Directory to extract into")

	return cmd
}
