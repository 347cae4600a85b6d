package logic

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"

	"github.com/idelchi/minizip/internal/config"
)

// errPasswordMismatch is returned when the confirmation prompt differs.
var errPasswordMismatch = errors.New("passwords do not match")

// password returns the password bytes for cfg: the --password value, a terminal prompt
// with --ask-password, or nil. confirm asks twice. The caller must wipe the result.
// cfg.Password is blanked once read.
func password(cfg *config.Config, confirm bool) ([]byte, error) {
	if !cfg.AskPassword {
		if cfg.Password == "" {
			return nil, nil
		}

		pw := []byte(cfg.Password)
		cfg.Password = ""

		return pw, nil
	}

	pw, err := readPassword("Password: ")
	if err != nil {
		return nil, err
	}

	if !confirm {
		return pw, nil
	}

	again, err := readPassword("Confirm password: ")
	if err != nil {
		wipe(pw)

		return nil, err
	}

	defer wipe(again)

	if !bytes.Equal(pw, again) {
		wipe(pw)

		return nil, errPasswordMismatch
	}

	return pw, nil
}

// readPassword prompts on stderr and reads without echo from stdin, or from the
// controlling terminal when stdin is redirected.
func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd()) //nolint:gosec // fd fits in int

	if !term.IsTerminal(fd) {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return nil, errors.New("cannot prompt for a password: stdin is not a terminal, use --password or MINIZIP_PASSWORD")
		}
		defer tty.Close()

		fd = int(tty.Fd()) //nolint:gosec // fd fits in int
	}

	pw, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return pw, nil
}

// wipe overwrites b with zeros.
func wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
