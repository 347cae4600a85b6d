package filter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/internal/filter"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// tree builds:
//
//	root/
//	  a.txt
//	  .env
//	  build/out.bin
//	  .git/config
//	  src/main.go
//	  src/main.tmp
//	  src/.cache/x
func tree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	for _, name := range []string{"a.txt", ".env", "build/out.bin", ".git/config", "src/main.go", "src/main.tmp", "src/.cache/x"} {
		mustWriteFile(t, filepath.Join(root, filepath.FromSlash(name)), name)
	}

	return root
}

func names(entries []archive.Entry) []string {
	out := make([]string, 0, len(entries))

	for _, e := range entries {
		name := e.Name
		if e.Dir {
			name += "/"
		}

		out = append(out, name)
	}

	return out
}

func TestFromPathDirectory(t *testing.T) {
	t.Parallel()

	root := tree(t)

	tests := []struct {
		name string
		opts filter.Options
		want []string
	}{
		{
			name: "hidden skipped by default",
			want: []string{"a.txt", "build/", "build/out.bin", "src/", "src/main.go", "src/main.tmp"},
		},
		{
			name: "include hidden",
			opts: filter.Options{IncludeHidden: true},
			want: []string{
				".env", ".git/", ".git/config", "a.txt", "build/", "build/out.bin",
				"src/", "src/.cache/", "src/.cache/x", "src/main.go", "src/main.tmp",
			},
		},
		{
			name: "exclude patterns",
			opts: filter.Options{Exclude: []string{"*.tmp", "build"}},
			want: []string{"a.txt", "src/", "src/main.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entries, err := filter.FromPath(root, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(entries))
		})
	}
}

func TestFromPathSingleFile(t *testing.T) {
	t.Parallel()

	root := tree(t)

	entries, err := filter.FromPath(filepath.Join(root, ".env"), filter.Options{Exclude: []string{"*"}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".env", entries[0].Name)
	assert.Equal(t, filepath.Join(root, ".env"), entries[0].Path)
}

func TestFromPathMissing(t *testing.T) {
	t.Parallel()

	_, err := filter.FromPath(filepath.Join(t.TempDir(), "nope"), filter.Options{})
	require.ErrorIs(t, err, archive.ErrSourceNotFound)
}

func TestFromFiles(t *testing.T) {
	t.Parallel()

	root := tree(t)
	mainGo := filepath.Join(root, "src", "main.go")
	a := filepath.Join(root, "a.txt")

	entries, err := filter.FromFiles([]string{mainGo, a, mainGo}, filter.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "a.txt"}, names(entries))

	entries, err = filter.FromFiles([]string{mainGo, a, filepath.Join(root, "build")}, filter.Options{BaseDir: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main.go", "a.txt", "build/", "build/out.bin"}, names(entries))

	_, err = filter.FromFiles([]string{mainGo}, filter.Options{BaseDir: filepath.Join(root, "build")})
	require.Error(t, err)

	_, err = filter.FromFiles(nil, filter.Options{})
	require.Error(t, err)

	_, err = filter.FromFiles([]string{filepath.Join(root, "missing")}, filter.Options{})
	require.ErrorIs(t, err, archive.ErrSourceNotFound)
}

func TestLoadPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	jsonc := filepath.Join(dir, "patterns.jsonc")
	mustWriteFile(t, jsonc, `[
  // build outputs
  "build",
  "*.tmp", /* editor files */
]`)

	lines := filepath.Join(dir, "patterns.txt")
	mustWriteFile(t, lines, "# comment\n\nbuild\n  *.tmp  \n")

	for _, path := range []string{jsonc, lines} {
		patterns, err := filter.LoadPatterns(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"build", "*.tmp"}, patterns)
	}

	root := tree(t)

	entries, err := filter.FromPath(root, filter.Options{ExcludeFrom: jsonc})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "src/", "src/main.go"}, names(entries))

	_, err = filter.LoadPatterns(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		".env": true, ".git": true, "a.txt": false, ".": false, "..": false, "a.b": false,
	} {
		assert.Equal(t, want, filter.IsHidden(name), name)
	}
}
