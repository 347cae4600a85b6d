// Package logic implements the archive operations behind each command.
package logic

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/encryption"
	"github.com/idelchi/minizip/internal/filter"
)

// ErrTestFailed is returned when an archive fails its integrity test.
var ErrTestFailed = errors.New("archive test failed")

// Compress archives the file or directory cfg.Files[0] into cfg.Output.
func Compress(cfg *config.Config, out io.Writer) error {
	return compress(cfg, out, func(opts filter.Options) ([]archive.Entry, error) {
		return filter.FromPath(cfg.Files[0], opts)
	})
}

// CompressFiles archives every path in cfg.Files into cfg.Output.
func CompressFiles(cfg *config.Config, out io.Writer) error {
	return compress(cfg, out, func(opts filter.Options) ([]archive.Entry, error) {
		return filter.FromFiles(cfg.Files, opts)
	})
}

func compress(cfg *config.Config, out io.Writer, resolve func(filter.Options) ([]archive.Entry, error)) error {
	start := time.Now()

	entries, err := resolve(filter.Options{
		IncludeHidden: cfg.IncludeHidden,
		Exclude:       cfg.Exclude,
		ExcludeFrom:   cfg.ExcludeFrom,
		BaseDir:       cfg.BaseDir,
	})
	if err != nil {
		return fmt.Errorf("resolving files: %w", err)
	}

	if len(entries) == 0 {
		slog.Warn("nothing to compress, writing an empty archive", "output", cfg.Output)
	}

	if cfg.Dry {
		return dryRun(cfg, out, entries, start)
	}

	return withSession(cfg, true, func(session *archive.Session) error {
		sum, err := session.CreateFile(cfg.Output, entries)
		if err != nil {
			return fmt.Errorf("creating %q: %w", cfg.Output, err)
		}

		if !cfg.Quiet {
			for _, entry := range entries {
				fmt.Fprintf(out, "Added %q\n", entry.Name)
			}
		}

		if cfg.Test {
			if err := session.VerifyFile(cfg.Output); err != nil {
				return fmt.Errorf("%w: %q: %w", ErrTestFailed, cfg.Output, err)
			}

			if !cfg.Quiet {
				fmt.Fprintf(out, "Tested %q: OK\n", cfg.Output)
			}
		}

		if cfg.Stats {
			printStats(out, stats{
				files:    sum.Files,
				dirs:     sum.Dirs,
				size:     sum.Bytes,
				archive:  fileSize(cfg.Output),
				duration: time.Since(start),
			})
		}

		return nil
	})
}

// dryRun previews the entries compress would add without writing the archive.
func dryRun(cfg *config.Config, out io.Writer, entries []archive.Entry, start time.Time) error {
	var sum stats

	for _, entry := range entries {
		if !cfg.Quiet {
			fmt.Fprintf(out, "Would add %q\n", entry.Name)
		}

		if entry.Dir {
			sum.dirs++

			continue
		}

		sum.files++
		sum.size += fileSize(entry.Path)
	}

	if cfg.Stats {
		sum.duration = time.Since(start)
		printStats(out, sum)
	}

	return nil
}

// Extract extracts the archive cfg.Files[0] into cfg.Dest.
func Extract(cfg *config.Config, out io.Writer) error {
	start := time.Now()
	path := cfg.Files[0]

	return withSession(cfg, false, func(session *archive.Session) error {
		written, err := session.ExtractFile(path, cfg.Dest)
		if err != nil {
			return fmt.Errorf("extracting %q: %w", path, err)
		}

		var size int64

		for _, file := range written {
			if !cfg.Quiet {
				fmt.Fprintf(out, "Extracted %q\n", file)
			}

			size += fileSize(file)
		}

		if cfg.Stats {
			printStats(out, stats{
				files:    len(written),
				size:     size,
				archive:  fileSize(path),
				duration: time.Since(start),
			})
		}

		return nil
	})
}

// Test verifies every member of the archive cfg.Files[0] without writing files.
func Test(cfg *config.Config, out io.Writer) error {
	path := cfg.Files[0]

	return withSession(cfg, false, func(session *archive.Session) error {
		if err := session.VerifyFile(path); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrTestFailed, path, err)
		}

		if !cfg.Quiet {
			fmt.Fprintf(out, "No errors detected in %q\n", path)
		}

		return nil
	})
}

// List prints the members of the archive cfg.Files[0]. No password is needed.
func List(cfg *config.Config, out io.Writer) error {
	session, err := archive.New(archive.Options{Parallel: cfg.Parallel})
	if err != nil {
		return err
	}
	defer session.Close()

	path := cfg.Files[0]

	members, err := session.ListFile(path)
	if err != nil {
		return fmt.Errorf("listing %q: %w", path, err)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	fmt.Fprintln(tw, "SIZE\tMETHOD\tENCRYPTION\tMODIFIED\tNAME")

	var total uint64

	for _, m := range members {
		encrypted := "-"
		if m.Encrypted {
			encrypted = m.Algorithm.String()
		}

		total += m.Size

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			humanize.IBytes(m.Size), m.Method, encrypted, m.Modified.Local().Format(time.DateTime), m.Name)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "%d members, %s\n", len(members), humanize.IBytes(total))
	}

	return nil
}

// Algorithms prints the available algorithms.
func Algorithms(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")

	for _, alg := range encryption.Algorithms() {
		name := alg.String()
		if alg == encryption.DefaultAlgorithm {
			name += " (default)"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\n", byte(alg), name, alg.Description())
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing algorithms: %w", err)
	}

	return nil
}

// withSession opens a session holding the configured password, runs fn and closes the
// session, wiping the password, on every exit path. A prompted password is asked twice
// when creating.
func withSession(cfg *config.Config, creating bool, fn func(*archive.Session) error) error {
	alg, err := cfg.AlgorithmValue()
	if err != nil {
		return err
	}

	session, err := archive.New(archive.Options{
		Level:    cfg.Level,
		Parallel: cfg.Parallel,
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}
	defer session.Close()

	pw, err := password(cfg, creating)
	if err != nil {
		return err
	}

	encrypted := len(pw) > 0

	err = session.SetPassword(pw, alg)
	wipe(pw)

	if err != nil {
		return err
	}

	if creating && !encrypted && cfg.Algorithm != "" {
		slog.Warn("algorithm has no effect without a password", "algorithm", alg)
	}

	slog.Debug("session ready", "encrypted", encrypted, "algorithm", alg, "level", cfg.Level, "parallel", cfg.Parallel)

	return fn(session)
}

type stats struct {
	files    int
	dirs     int
	size     int64
	archive  int64
	duration time.Duration
}

func printStats(w io.Writer, s stats) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Files:     %d\n", s.files)
	fmt.Fprintf(w, "  Dirs:      %d\n", s.dirs)
	//nolint:gosec // sizes are always non-negative
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, s.size))))
	//nolint:gosec // sizes are always non-negative
	fmt.Fprintf(w, "  Archive:   %s\n", humanize.IBytes(uint64(max(0, s.archive))))
	fmt.Fprintf(w, "  Duration:  %s\n", s.duration.Round(time.Millisecond))
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return info.Size()
}
