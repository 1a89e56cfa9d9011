package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTree creates files (slash-separated relative paths) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestRootCommand(t *testing.T) {
	stdout, _, err := execute(t, nil, "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "cachekey")
	assert.Contains(t, stdout, "cache key")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	if cmd.Use != "cachekey" {
		t.Errorf("Expected Use to be 'cachekey', got '%s'", cmd.Use)
	}

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"fingerprint", "plan", "match", "files", "history"} {
		if !names[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
}

func TestRootCommandVersion(t *testing.T) {
	stdout, _, err := execute(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, Version)
}

func TestInvalidWorkdir(t *testing.T) {
	_, _, err := execute(t, nil, "plan", "*.go", "--workdir", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{".cachekey/config.yaml": "hash_algorithm: md5\n"})

	_, _, err := execute(t, nil, "plan", "*.go", "--workdir", wd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLogDirWritesRunLog(t *testing.T) {
	wd := t.TempDir()
	logDir := filepath.Join(t.TempDir(), "logs")

	_, _, err := execute(t, nil, "plan", "src/*.go", "--workdir", wd, "--log-dir", logDir, "--log-level", "debug")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Plan src/*.go"), "run log should contain the plan")
	assert.Contains(t, string(data), "run log: "+logDir)
}
