package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/minizip/internal/config"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and the persistent flags shared by every
// subcommand.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "minizip [flags] command [flags]"
	root.Short = "Zip archiver with optional password-based member encryption"
	root.Long = `Packages files and directories into standard zip archives.
With a password, every member is transformed with one of several keyed
algorithms and carries a verification tag, so a wrong password is detected
before any file is written.

Every flag can also be set through an environment variable named
MINIZIP_<FLAG>, for example MINIZIP_PASSWORD.`

	flags := root.PersistentFlags()
	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.StringP("password", "p", "", "Password for encrypting or decrypting members")
	flags.BoolP("ask-password", "P", false, "Prompt for the password on the terminal")
	flags.StringP("algorithm", "a", "", "Encryption algorithm (see 'algorithms'), defaults to xor")
	flags.BoolP("verbose", "v", false, "Log every member processed")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.Bool("stats", false, "Print statistics at the end")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")

	root.AddCommand(
		NewCompressCommand(cfg),
		NewCompressFilesCommand(cfg),
		NewExtractCommand(cfg),
		NewTestCommand(cfg),
		NewListCommand(cfg),
		NewAlgorithmsCommand(),
		NewCheckCommand(cfg),
	)

	return root
}
