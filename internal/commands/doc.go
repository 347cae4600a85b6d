// Package commands provides the command-line interface for the minizip tool.
//
// It implements commands for:
//   - compressing a file, a directory or a list of files into a zip archive
//   - extracting, testing and listing archives
//   - listing the available encryption algorithms
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/logging"
)

// preRun returns a PreRunE handler that resolves positional args (or defaults when
// there are none) into cfg.Files, validates the configuration and installs the logger.
func preRun(cfg *config.Config, defaults ...string) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			cfg.Files = defaults
		} else {
			cfg.Files = args
		}

		if err := cobraext.Validate(cfg, cfg); err != nil {
			return err
		}

		logging.Setup(cfg.Verbose, cfg.Quiet)

		return nil
	}
}
