package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/logic"
)

// NewCompressCommand creates a new cobra command for the compress subcommand.
func NewCompressCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compress [flags] path",
		Aliases: []string{"c"},
		Short:   "Compress a file or directory",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Compress = true

			return preRun(cfg)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Compress(cfg, cmd.OutOrStdout())
		},
	}

	addCompressFlags(cmd)

	return cmd
}

// addCompressFlags registers the flags shared by compress and compress-files.
func addCompressFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Path of the archive to create")
	flags.IntP("compression-level", "l", archive.DefaultLevel, "Deflate level for unencrypted members, 0 (store) to 9")
	flags.Bool("include-hidden", false, "Include files and directories whose name starts with '.'")
	flags.StringSliceP("exclude", "e", nil, "Glob pattern of paths to leave out, may be repeated")
	flags.String("exclude-from", "", "File with exclude patterns (JSONC array or one per line)")
	flags.Bool("test", false, "Test the archive after creating it")
	flags.BoolP("dry-run", "n", false, "Show what would be added without writing the archive")
}
