package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/cachekey/internal/manifest"
)

func TestPlanCommand(t *testing.T) {
	wd := t.TempDir()

	tests := []struct {
		name string
		glob string
		want []string
	}{
		{
			name: "exact file",
			glob: "dir/file.txt",
			want: []string{
				"root:    " + filepath.Join(wd, "dir"),
				"pattern: file.txt",
				"depth:   top-only",
			},
		},
		{
			name: "top-level wildcard",
			glob: "dir/*.txt",
			want: []string{
				"root:    " + filepath.Join(wd, "dir"),
				"pattern: *",
				"depth:   top-only",
				"levels:  1",
			},
		},
		{
			name: "recursive",
			glob: "dir/**/*.txt",
			want: []string{
				"root:    " + filepath.Join(wd, "dir"),
				"pattern: *",
				"depth:   all-directories",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, nil, "plan", tt.glob, "--workdir", wd)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestMatchCommand(t *testing.T) {
	wd := t.TempDir()

	t.Run("arguments", func(t *testing.T) {
		stdout, _, err := execute(t, nil, "match", "*.tmp", "good.tmp", "bad.tmp", "something.else", "--exclude", "bad.tmp", "--workdir", wd)
		require.NoError(t, err)
		assert.Equal(t, "good.tmp\n", stdout)
	})

	t.Run("dot-relative include", func(t *testing.T) {
		stdout, _, err := execute(t, nil, "match", "./*.tmp", filepath.Join(wd, "good.tmp"), filepath.Join(wd, "bad.tmp"), "-e", "bad.tmp", "--workdir", wd)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "good.tmp")+"\n", stdout)
	})

	t.Run("stdin", func(t *testing.T) {
		input := strings.NewReader("src/a.go\n\nsrc/testdata/b.go\nREADME.md\nsrc/pkg/c.go\n")
		stdout, _, err := execute(t, input, "match", "**/*.go", "--exclude", "**/testdata/**", "--workdir", wd)
		require.NoError(t, err)
		assert.Equal(t, "src/a.go\nsrc/pkg/c.go\n", stdout)
	})

	t.Run("invert", func(t *testing.T) {
		stdout, _, err := execute(t, nil, "match", "*.tmp", "good.tmp", "other.txt", "--invert", "--workdir", wd)
		require.NoError(t, err)
		assert.Equal(t, "other.txt\n", stdout)
	})

	t.Run("invalid include", func(t *testing.T) {
		_, _, err := execute(t, nil, "match", "   ", "a", "--workdir", wd)
		assert.Error(t, err)
	})
}

func TestFilesCommand(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{
		"a.go":                 "package a",
		"pkg/b.go":             "package b",
		"pkg/testdata/c.go":    "package c",
		"vendor/dep/d.go":      "package d",
		"pkg/readme.md":        "docs",
		".git/hooks/pre.go":    "package hooks",
		"pkg/deep/nested/e.go": "package e",
	})

	stdout, _, err := execute(t, nil, "files", "**/*.go", "--exclude", "**/testdata/**", "-e", "vendor/**", "--relative", "--workdir", wd)
	require.NoError(t, err)

	want := strings.Join([]string{
		"a.go",
		filepath.Join("pkg", "b.go"),
		filepath.Join("pkg", "deep", "nested", "e.go"),
	}, "\n") + "\n"
	assert.Equal(t, want, stdout, ".git is excluded by the default config")
}

func TestFilesCommand_IncludeNamesExcludedDirectory(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{
		".git/config":     "[core]",
		"mod/.git/config": "[core]",
		"mod/.git/HEAD":   "ref",
	})

	stdout, stderr, err := execute(t, nil, "files", "**/.git/config", "-e", "mod/**", "--relative", "--workdir", wd, "-v")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".git", "config")+"\n", stdout)
	assert.Contains(t, stderr, "excluding "+filepath.Join(wd, "mod", "**"))
}

func TestFilesCommand_AbsolutePaths(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{"conf/app.yaml": "a: 1", "conf/sub/skip.yaml": "b: 2"})

	stdout, _, err := execute(t, nil, "files", "conf/*.yaml", "--workdir", wd)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "conf", "app.yaml")+"\n", stdout)
}

func TestFingerprintCommand(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{
		"go.sum":       "v1",
		"src/main.go":  "package main",
		"src/extra.go": "package main",
	})

	stdout, _, err := execute(t, nil, "fingerprint", `go | "linux" | go.sum, src/*.go`, "--workdir", wd)
	require.NoError(t, err)
	assert.Contains(t, stdout, "key:  go|linux|")
	assert.Contains(t, stdout, "hash: ")

	again, _, err := execute(t, nil, "fingerprint", `go | "linux" | go.sum, src/*.go`, "--workdir", wd)
	require.NoError(t, err)
	assert.Equal(t, stdout, again, "same tree must give the same key")

	xx, _, err := execute(t, nil, "fingerprint", `go | "linux" | go.sum, src/*.go`, "--workdir", wd, "--hash", "xxhash")
	require.NoError(t, err)
	assert.NotEqual(t, stdout, xx)
}

func TestFingerprintCommand_Errors(t *testing.T) {
	wd := t.TempDir()

	_, _, err := execute(t, nil, "fingerprint", "npm | **/package-lock.json", "--workdir", wd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching files")

	_, _, err = execute(t, nil, "fingerprint", "npm || x", "--workdir", wd)
	assert.Error(t, err)

	_, _, err = execute(t, nil, "fingerprint", "npm", "--workdir", wd, "--hash", "md5")
	assert.Error(t, err)
}

func TestFingerprintCommand_DebugLogsPlans(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{"go.sum": "v1"})

	_, stderr, err := execute(t, nil, "fingerprint", "go.sum", "--workdir", wd, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Plan go.sum")
	assert.Contains(t, stderr, "Fingerprint ")
}

func TestFingerprintCommand_Manifest(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{"go.sum": "v1", "go.mod": "module x"})

	stdout, _, err := execute(t, nil, "fingerprint", "go.sum, go.mod", "--workdir", wd, "--output", "out/manifest.yaml")
	require.NoError(t, err)

	path := filepath.Join(wd, "out", "manifest.yaml")
	assert.Contains(t, stdout, "manifest: "+path)

	m, err := manifest.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "go.sum, go.mod", m.Spec)
	require.Len(t, m.Segments, 1)
	assert.Len(t, m.Segments[0].Files, 2)

	// Second run reports the modified file
	writeTree(t, wd, map[string]string{"go.sum": "v2"})
	_, stderr, err := execute(t, nil, "fingerprint", "go.sum, go.mod", "--workdir", wd, "--output", "out/manifest.yaml")
	require.NoError(t, err)
	assert.Contains(t, stderr, "modified: go.sum")
}

func TestFingerprintCommand_RecordAndHistory(t *testing.T) {
	wd := t.TempDir()
	writeTree(t, wd, map[string]string{"go.sum": "v1"})

	stdout, _, err := execute(t, nil, "history", "--workdir", wd)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No fingerprints recorded")

	stdout, _, err = execute(t, nil, "fingerprint", "go | go.sum", "--workdir", wd, "--record")
	require.NoError(t, err)
	assert.Contains(t, stdout, "status: new")

	stdout, _, err = execute(t, nil, "fingerprint", "go | go.sum", "--workdir", wd, "--record")
	require.NoError(t, err)
	assert.Contains(t, stdout, "status: unchanged")

	writeTree(t, wd, map[string]string{"go.sum": "v2"})
	stdout, _, err = execute(t, nil, "fingerprint", "go | go.sum", "--workdir", wd, "--record")
	require.NoError(t, err)
	assert.Contains(t, stdout, "status: changed")

	_, err = os.Stat(filepath.Join(wd, ".cachekey", "history.db"))
	require.NoError(t, err)

	stdout, _, err = execute(t, nil, "history", "--workdir", wd, "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(stdout, "spec: go | go.sum"))
	assert.Contains(t, stdout, "dir:  "+wd)
}
