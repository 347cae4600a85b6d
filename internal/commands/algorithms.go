package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/minizip/internal/logic"
)

// NewAlgorithmsCommand creates a new cobra command listing the encryption algorithms.
func NewAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "algorithms",
		Aliases: []string{"list-algorithms"},
		Short:   "List the available encryption algorithms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Algorithms(cmd.OutOrStdout())
		},
	}
}
