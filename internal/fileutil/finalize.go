// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultMode is used for outputs whose source carries no permission bits.
const DefaultMode fs.FileMode = 0o644

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	TmpFile *os.File
	TmpName string
	OutPath string
	Mode    fs.FileMode
	ModTime time.Time
}

// NewTempContext creates a temp file next to outPath for atomic writing. On Commit the
// file receives mode (DefaultMode when zero) and, if modTime is set, that modification
// time. Caller must defer CleanupOnError.
func NewTempContext(outPath string, mode fs.FileMode, modTime time.Time) (*TempContext, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	if mode.Perm() == 0 {
		mode = DefaultMode
	}

	return &TempContext{
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		OutPath: outPath,
		Mode:    mode.Perm(),
		ModTime: modTime,
	}, nil
}

// Write writes to the temp file.
func (tc *TempContext) Write(p []byte) (int, error) {
	return tc.TmpFile.Write(p)
}

// Commit closes the temp file, applies the mode, renames it over OutPath and returns
// the size of the result.
func (tc *TempContext) Commit() (int64, error) {
	if err := tc.TmpFile.Chmod(tc.Mode); err != nil {
		return 0, fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tc.TmpName, tc.OutPath); err != nil {
		return 0, fmt.Errorf("renaming output file: %w", err)
	}

	return FinalizeOutput(tc.OutPath, !tc.ModTime.IsZero(), tc.ModTime)
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:gosec // best-effort cleanup
	}
}

// FinalizeOutput optionally preserves timestamps and returns the output file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}
