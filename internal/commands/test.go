package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/logic"
)

// NewTestCommand creates a new cobra command for the test subcommand.
func NewTestCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "test [flags] archive",
		Aliases: []string{"t"},
		Short:   "Test the integrity of an archive",
		Long: `Decode every member without writing files. Fails when the password does not
match an encrypted member or when member data is corrupt.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Test(cfg, cmd.OutOrStdout())
		},
	}
}
