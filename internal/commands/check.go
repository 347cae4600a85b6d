package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/logic"
)

// NewCheckCommand creates a new cobra command for the check subcommand.
func NewCheckCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check [flags] [paths...]",
		Short:   "Validate that exclude patterns match files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg, "."),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Check(cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceP("exclude", "e", nil, "Glob pattern to check, may be repeated")
	cmd.Flags().String("exclude-from", "", "File with exclude patterns (JSONC array or one per line)")

	return cmd
}
