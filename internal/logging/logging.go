// Package logging builds the structured logger used on stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Level maps the verbosity flags to a slog level.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// New returns a tint logger writing to w. Colours are only used when w is a terminal.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		AddSource:  level == slog.LevelDebug,
		NoColor:    !isTerminal(w),
	})

	return slog.New(handler)
}

// Setup installs a stderr logger for the given flags as the slog default and returns it.
func Setup(verbose, quiet bool) *slog.Logger {
	logger := New(os.Stderr, Level(verbose, quiet))
	slog.SetDefault(logger)

	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
