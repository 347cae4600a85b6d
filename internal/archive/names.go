package archive

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// cleanName normalises a member name to a relative slash path, rejecting names that
// are empty, absolute, carry a volume or climb out with "..".
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))

	switch {
	case name == "", clean == ".", clean == "..":
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	case path.IsAbs(clean), strings.HasPrefix(clean, "../"):
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	case len(clean) >= 2 && clean[1] == ':':
		return "", fmt.Errorf("%w: %q has a volume name", ErrUnsafePath, name)
	}

	return clean, nil
}

// target resolves a member name below dest.
func target(dest, name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}

	full := filepath.Join(dest, filepath.FromSlash(clean))

	rel, err := filepath.Rel(dest, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes destination", ErrUnsafePath, name)
	}

	return full, nil
}
