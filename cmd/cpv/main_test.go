package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	appErrors "cpv/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindowsCLI(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("trailing spaces are not valid in windows file names")
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCopiesFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "hello"})

	code, stdout, _ := runCLI(t, filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt"))
	assert.Equal(t, appErrors.ExitOK, code)
	assert.Contains(t, stdout, "Copied 1 of 1 files")

	got, err := os.ReadFile(filepath.Join(root, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestCopiesPathWithTrailingSpace(t *testing.T) {
	skipOnWindowsCLI(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "other file", "a ": "requested file"})

	code, _, stderr := runCLI(t, "--plain", filepath.Join(root, "a "), filepath.Join(root, "out"))
	assert.Equal(t, appErrors.ExitOK, code, stderr)

	got, err := os.ReadFile(filepath.Join(root, "out"))
	require.NoError(t, err)
	assert.Equal(t, "requested file", string(got))
}

func TestFileIntoMissingDirectoryFails(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	missing := filepath.Join(root, "nodir")

	code, _, stderr := runCLI(t, filepath.Join(root, "a.txt"), missing+string(filepath.Separator))
	assert.Equal(t, appErrors.ExitUsage, code)
	assert.Contains(t, stderr, "not a directory")

	_, err := os.Lstat(missing)
	assert.True(t, os.IsNotExist(err))
}

func TestCopiesDirectoryVerbose(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.txt": "a", "src/sub/b.txt": "b", "src/skip.tmp": "x"})
	src, dst := filepath.Join(root, "src"), filepath.Join(root, "dst")

	code, stdout, stderr := runCLI(t, "-rv", "--exclude", "*.tmp", src, dst)
	assert.Equal(t, appErrors.ExitOK, code, stderr)
	assert.Contains(t, stdout, "-> '"+filepath.Join(dst, "sub", "b.txt")+"'")
	assert.Contains(t, stdout, "excluded")
	assert.Contains(t, stdout, "Skipped 1 entries.")
	assert.Contains(t, stderr, "[100%]")

	_, err := os.Stat(filepath.Join(dst, "skip.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirectoryWithoutRecursiveIsUsageError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.txt": "a"})
	dst := filepath.Join(root, "dst")

	code, _, stderr := runCLI(t, filepath.Join(root, "src"), dst)
	assert.Equal(t, appErrors.ExitUsage, code)
	assert.Contains(t, stderr, "try using -r")

	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestDryRunCopiesNothing(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.txt": "a"})
	dst := filepath.Join(root, "dst")

	code, stdout, _ := runCLI(t, "-r", "--dry-run", filepath.Join(root, "src"), dst)
	assert.Equal(t, appErrors.ExitOK, code)
	assert.Contains(t, stdout, "Would copy 1 files")

	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"a"}},
		{"unknown flag", []string{"--bogus", "a", "b"}},
		{"bad buffer size", []string{"--buffer-size", "-1", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, appErrors.ExitUsage, code)
			assert.Contains(t, stderr, "cpv --help")
		})
	}
}

func TestVersionFlag(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, appErrors.ExitOK, code)
	assert.Contains(t, stdout, version)
}

func TestFailedOperationExitsOne(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs unix permissions enforced for the current user")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/ok.txt": "ok", "src/locked.txt": "secret"})
	locked := filepath.Join(root, "src", "locked.txt")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	code, stdout, _ := runCLI(t, "-r", filepath.Join(root, "src"), filepath.Join(root, "dst"))
	assert.Equal(t, appErrors.ExitFailures, code)
	assert.Contains(t, stdout, "1 operations failed:")

	got, err := os.ReadFile(filepath.Join(root, "dst", "ok.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}

func TestCancelledContextExits130(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.txt": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-r", filepath.Join(root, "src"), filepath.Join(root, "dst")}, &stdout, &stderr)
	assert.Equal(t, appErrors.ExitCancelled, code)
}
