package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/logic"
)

// NewListCommand creates a new cobra command for the list subcommand.
func NewListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list [flags] archive",
		Aliases: []string{"ls"},
		Short:   "List the members of an archive",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.List(cfg, cmd.OutOrStdout())
		},
	}
}
