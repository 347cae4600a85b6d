// Command minizip packages files into zip archives with optional password-based
// member encryption.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/internal/commands"
	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/encryption"
	"github.com/idelchi/minizip/internal/logic"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

func main() {
	cfg := &config.Config{}

	root := commands.NewRootCommand(cfg, version)

	if err := root.Execute(); err != nil {
		if errors.Is(err, cobraext.ErrExitGracefully) {
			return
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(exitCode(err))
	}
}

// Exit codes per failure kind.
const (
	exitFailure              = 1
	exitPasswordRequired     = 3
	exitWrongPassword        = 4
	exitUnknownAlgorithm     = 5
	exitTruncatedHeader      = 6
	exitSourceNotFound       = 7
	exitIO                   = 8
	exitInvalidCompression   = 9
	exitIntegrityTestFailure = 10
)

// exitCode maps err to the process exit status. A failed test command reports the
// test failure regardless of its cause.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, cobraext.ErrExitGracefully):
		return 0
	case errors.Is(err, logic.ErrTestFailed):
		return exitIntegrityTestFailure
	case errors.Is(err, encryption.ErrPasswordRequired):
		return exitPasswordRequired
	case errors.Is(err, encryption.ErrWrongPassword):
		return exitWrongPassword
	case errors.Is(err, encryption.ErrUnknownAlgorithm):
		return exitUnknownAlgorithm
	case errors.Is(err, encryption.ErrTruncatedHeader):
		return exitTruncatedHeader
	case errors.Is(err, archive.ErrSourceNotFound):
		return exitSourceNotFound
	case errors.Is(err, archive.ErrInvalidCompressionLevel):
		return exitInvalidCompression
	case errors.Is(err, archive.ErrIO), errors.Is(err, archive.ErrIntegrity):
		return exitIO
	default:
		return exitFailure
	}
}
