// Package filter turns command-line inputs into ordered archive entries. It walks
// directories, skips hidden names unless asked not to, and applies exclude patterns.
package filter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/pkg/pathmatch"
)

// Options controls which files are selected and how they are named.
type Options struct {
	// IncludeHidden keeps files and directories whose name starts with '.'.
	IncludeHidden bool
	// Exclude lists glob patterns (see pathmatch) of archive names to drop.
	Exclude []string
	// ExcludeFrom is a file with more exclude patterns.
	ExcludeFrom string
	// BaseDir names list inputs relative to it instead of by their base name.
	BaseDir string
}

// IsHidden reports whether a single path element is hidden. Hidden is decided by the
// name alone, the same way on every platform.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// Filter selects walked paths.
type Filter struct {
	excludes      pathmatch.Set
	includeHidden bool
}

// New compiles the exclude patterns in opts, including those from ExcludeFrom.
func New(opts Options) (*Filter, error) {
	patterns := append([]string{}, opts.Exclude...)

	if opts.ExcludeFrom != "" {
		loaded, err := LoadPatterns(opts.ExcludeFrom)
		if err != nil {
			return nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		patterns = append(patterns, loaded...)
	}

	set, err := pathmatch.NewSet(patterns)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{excludes: set, includeHidden: opts.IncludeHidden}, nil
}

// keep reports whether the archive name should be included.
func (f *Filter) keep(name string) bool {
	if !f.includeHidden && IsHidden(filepath.Base(name)) {
		return false
	}

	return !f.excludes.MatchAny(name)
}

// FromPath returns the entries for a single source. A file becomes one entry named by
// its base name; a directory contributes every file and sub-directory beneath it,
// named relative to it. Explicitly named files bypass hidden and exclude filtering.
func FromPath(source string, opts Options) ([]archive.Entry, error) {
	flt, err := New(opts)
	if err != nil {
		return nil, err
	}

	info, err := stat(source)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []archive.Entry{fileEntry(filepath.Base(source), source, info)}, nil
	}

	return flt.walk(source, "")
}

// FromFiles returns the entries for a list of sources. Each source is named relative
// to opts.BaseDir when set, else by its base name; directories are expanded beneath
// that name. Sources listed twice are added once.
func FromFiles(sources []string, opts Options) ([]archive.Entry, error) {
	if len(sources) == 0 {
		return nil, errors.New("file list cannot be empty")
	}

	flt, err := New(opts)
	if err != nil {
		return nil, err
	}

	var entries []archive.Entry

	seen := make(map[string]struct{})

	for _, source := range sources {
		source = filepath.Clean(source)

		if _, ok := seen[source]; ok {
			continue
		}

		seen[source] = struct{}{}

		info, err := stat(source)
		if err != nil {
			return nil, err
		}

		name, err := nameFor(source, opts.BaseDir)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			entries = append(entries, fileEntry(name, source, info))

			continue
		}

		entries = append(entries, archive.Entry{Name: name, Dir: true, Mode: info.Mode(), Modified: info.ModTime()})

		walked, err := flt.walk(source, name)
		if err != nil {
			return nil, err
		}

		entries = append(entries, walked...)
	}

	return entries, nil
}

// walk collects entries under root, prefixing names with prefix.
func (f *Filter) walk(root, prefix string) ([]archive.Entry, error) {
	var entries []archive.Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %q: %w", path, err)
		}

		name := filepath.ToSlash(rel)
		if prefix != "" {
			name = prefix + "/" + name
		}

		if !f.keep(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %q: %w", path, err)
		}

		switch {
		case d.IsDir():
			entries = append(entries, archive.Entry{Name: name, Dir: true, Mode: info.Mode(), Modified: info.ModTime()})
		case info.Mode().IsRegular():
			entries = append(entries, fileEntry(name, path, info))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", root, err)
	}

	return entries, nil
}

func fileEntry(name, path string, info fs.FileInfo) archive.Entry {
	return archive.Entry{
		Name:     filepath.ToSlash(name),
		Path:     path,
		Mode:     info.Mode(),
		Modified: info.ModTime(),
	}
}

// nameFor returns the archive name of source relative to base, or its base name.
func nameFor(source, base string) (string, error) {
	if base == "" {
		return filepath.Base(source), nil
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving base directory %q: %w", base, err)
	}

	absSource, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", source, err)
	}

	rel, err := filepath.Rel(absBase, absSource)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is not inside base directory %q", source, base)
	}

	return filepath.ToSlash(rel), nil
}

func stat(source string) (fs.FileInfo, error) {
	info, err := os.Stat(source)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", archive.ErrSourceNotFound, source)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: stat %q: %w", archive.ErrIO, source, err)
	}

	return info, nil
}
