package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/logic"
)

// NewCompressFilesCommand creates a new cobra command for the compress-files subcommand.
func NewCompressFilesCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compress-files [flags] paths...",
		Aliases: []string{"files"},
		Short:   "Compress a list of files",
		Long: `Compress a list of files. Each file is stored under its base name, or under
its path relative to --base-dir when given. Directories in the list are added
with their contents.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Compress = true

			return preRun(cfg)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.CompressFiles(cfg, cmd.OutOrStdout())
		},
	}

	addCompressFlags(cmd)
	cmd.Flags().String("base-dir", "", "Directory member names are made relative to")

	return cmd
}
