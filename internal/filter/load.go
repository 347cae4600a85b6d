package filter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// LoadPatterns reads exclude patterns from path. A file whose first non-blank
// character is '[' is parsed as a JSONC array of strings; anything else is read as one
// pattern per line, skipping blank lines and lines starting with '#'.
func LoadPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("reading patterns file %q: %w", path, err)
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var patterns []string
		if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &patterns); err != nil {
			return nil, fmt.Errorf("parsing patterns file %q: %w", path, err)
		}

		return patterns, nil
	}

	var patterns []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patterns = append(patterns, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning patterns file %q: %w", path, err)
	}

	return patterns, nil
}
