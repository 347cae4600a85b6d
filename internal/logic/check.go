package logic

import (
	"errors"
	"fmt"
	"io"

	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/filter"
	"github.com/idelchi/minizip/pkg/pathmatch"
)

// Check validates that every exclude pattern matches at least one archive name under
// the paths in cfg.Files. Names are computed the way compress computes them, with
// hidden files included.
func Check(cfg *config.Config, out io.Writer) error {
	patterns := append([]string{}, cfg.Exclude...)

	if cfg.ExcludeFrom != "" {
		loaded, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return fmt.Errorf("loading exclude patterns: %w", err)
		}

		patterns = append(patterns, loaded...)
	}

	if len(patterns) == 0 {
		return errors.New("no exclude patterns to check")
	}

	var candidates []string

	for _, path := range cfg.Files {
		entries, err := filter.FromPath(path, filter.Options{IncludeHidden: true})
		if err != nil {
			return fmt.Errorf("collecting files: %w", err)
		}

		for _, entry := range entries {
			candidates = append(candidates, entry.Name)
		}
	}

	if failures := checkPatterns(out, patterns, candidates, cfg.Quiet); failures > 0 {
		return fmt.Errorf("%d pattern(s) matched no files", failures)
	}

	return nil
}

// checkPatterns tests each pattern individually against candidates and returns the
// number of patterns that matched nothing.
func checkPatterns(out io.Writer, patterns, candidates []string, quiet bool) int {
	var failures int

	for _, glob := range patterns {
		pattern, err := pathmatch.Compile(glob)
		if err != nil {
			fmt.Fprintf(out, "exclude: %s: invalid pattern: %v\n", glob, err)

			failures++

			continue
		}

		var count int

		for _, name := range candidates {
			if pattern.Match(name) {
				count++
			}
		}

		switch {
		case count == 0:
			fmt.Fprintf(out, "exclude: %s: 0 files (ERROR)\n", glob)

			failures++
		case !quiet:
			fmt.Fprintf(out, "exclude: %s: %d files\n", glob, count)
		}
	}

	return failures
}
