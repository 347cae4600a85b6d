package logic_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/internal/config"
	"github.com/idelchi/minizip/internal/encryption"
	"github.com/idelchi/minizip/internal/logic"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func project(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "README.md"), "# project\n")
	mustWriteFile(t, filepath.Join(root, "src", "main.go"), "package main\n")
	mustWriteFile(t, filepath.Join(root, "src", "main.log"), "noise\n")
	mustWriteFile(t, filepath.Join(root, ".secret"), "hidden\n")

	return root
}

func base(files ...string) *config.Config {
	return &config.Config{Parallel: 2, Level: archive.DefaultLevel, Files: files, Dest: "."}
}

func TestCompressExtractRoundTrip(t *testing.T) {
	t.Parallel()

	src := project(t)
	out := filepath.Join(t.TempDir(), "project.zip")

	cfg := base(src)
	cfg.Output = out
	cfg.Password = "secret"
	cfg.Algorithm = "hmac_sha256"
	cfg.Exclude = []string{"*.log"}
	cfg.Test = true
	cfg.Stats = true

	var stdout bytes.Buffer

	require.NoError(t, logic.Compress(cfg, &stdout))
	assert.Empty(t, cfg.Password, "password left in the configuration")
	assert.Contains(t, stdout.String(), `Added "src/main.go"`)
	assert.Contains(t, stdout.String(), "OK")
	assert.Contains(t, stdout.String(), "Stats")
	assert.NotContains(t, stdout.String(), "main.log")
	assert.NotContains(t, stdout.String(), ".secret")

	stdout.Reset()

	list := base(out)
	require.NoError(t, logic.List(list, &stdout))
	assert.Contains(t, stdout.String(), "hmac_sha256")
	assert.Contains(t, stdout.String(), "README.md")

	dest := t.TempDir()
	extract := base(out)
	extract.Password = "secret"
	extract.Dest = dest
	extract.Quiet = true

	stdout.Reset()

	require.NoError(t, logic.Extract(extract, &stdout))
	assert.Empty(t, stdout.String())
	assert.Empty(t, extract.Password, "password left in the configuration")

	data, err := os.ReadFile(filepath.Join(dest, "src", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))
	assert.NoFileExists(t, filepath.Join(dest, "src", "main.log"))
}

func TestTestCommandReportsFailures(t *testing.T) {
	t.Parallel()

	src := project(t)
	out := filepath.Join(t.TempDir(), "a.zip")

	cfg := base(src)
	cfg.Output = out
	cfg.Password = "right"
	cfg.Quiet = true

	require.NoError(t, logic.Compress(cfg, &bytes.Buffer{}))

	good := base(out)
	good.Password = "right"

	var stdout bytes.Buffer

	require.NoError(t, logic.Test(good, &stdout))
	assert.Contains(t, stdout.String(), "No errors detected")

	bad := base(out)
	bad.Password = "wrong"

	err := logic.Test(bad, &bytes.Buffer{})
	require.ErrorIs(t, err, logic.ErrTestFailed)
	require.ErrorIs(t, err, encryption.ErrWrongPassword)

	missing := base(filepath.Join(t.TempDir(), "missing.zip"))

	err = logic.Extract(missing, &bytes.Buffer{})
	require.ErrorIs(t, err, archive.ErrSourceNotFound)
}

func TestCompressFilesWithBaseDir(t *testing.T) {
	t.Parallel()

	src := project(t)
	out := filepath.Join(t.TempDir(), "files.zip")

	cfg := base(filepath.Join(src, "README.md"), filepath.Join(src, "src", "main.go"))
	cfg.Output = out
	cfg.BaseDir = src
	cfg.Level = 0

	var stdout bytes.Buffer

	require.NoError(t, logic.CompressFiles(cfg, &stdout))
	assert.Contains(t, stdout.String(), `Added "src/main.go"`)

	dest := t.TempDir()
	extract := base(out)
	extract.Dest = dest

	require.NoError(t, logic.Extract(extract, &bytes.Buffer{}))
	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.FileExists(t, filepath.Join(dest, "src", "main.go"))
}

func TestDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	src := project(t)
	out := filepath.Join(t.TempDir(), "dry.zip")

	cfg := base(src)
	cfg.Output = out
	cfg.Dry = true
	cfg.IncludeHidden = true

	var stdout bytes.Buffer

	require.NoError(t, logic.Compress(cfg, &stdout))
	assert.Contains(t, stdout.String(), `Would add ".secret"`)
	assert.NoFileExists(t, out)
}

func TestAlgorithms(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer

	require.NoError(t, logic.Algorithms(&stdout))

	for _, alg := range encryption.Algorithms() {
		assert.Contains(t, stdout.String(), alg.String())
	}

	assert.Contains(t, stdout.String(), "xor (default)")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	src := project(t)

	cfg := base(src)
	cfg.Exclude = []string{"*.log", ".secret"}

	var stdout bytes.Buffer

	require.NoError(t, logic.Check(cfg, &stdout))
	assert.Contains(t, stdout.String(), "exclude: *.log: 1 files")

	cfg.Exclude = []string{"*.log", "*.tmp"}

	err := logic.Check(cfg, &stdout)
	require.Error(t, err)
	assert.Contains(t, stdout.String(), "exclude: *.tmp: 0 files (ERROR)")

	cfg.Exclude = nil
	require.Error(t, logic.Check(cfg, &stdout))
}
