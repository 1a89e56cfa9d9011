package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/cachekey/internal/glob"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// TestLogDirectoryCreation verifies .cachekey/logs/ is created in the working directory
func TestLogDirectoryCreation(t *testing.T) {
	t.Chdir(t.TempDir())

	logger, err := NewFileLogger()
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(filepath.Join(".cachekey", "logs")); err != nil {
		t.Errorf("expected log directory to exist: %v", err)
	}
}

// TestPerRunLogFile verifies a timestamped log file and the latest.log symlink
func TestPerRunLogFile(t *testing.T) {
	logDir := t.TempDir()

	logger, err := NewFileLoggerWithDir(logDir)
	if err != nil {
		t.Fatalf("NewFileLoggerWithDir() error = %v", err)
	}
	defer logger.Close()

	base := filepath.Base(logger.RunFile())
	if !strings.HasPrefix(base, "run-") || !strings.HasSuffix(base, ".log") {
		t.Errorf("unexpected run file name %q", base)
	}

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("failed to read latest.log symlink: %v", err)
	}
	if target != base {
		t.Errorf("latest.log points to %q, want %q", target, base)
	}

	content := readFile(t, logger.RunFile())
	if !strings.Contains(content, "=== cachekey Run Log ===") {
		t.Errorf("expected run log header, got %q", content)
	}
}

// TestSecondRunUpdatesSymlink verifies two runs in the same second get distinct files
func TestSecondRunUpdatesSymlink(t *testing.T) {
	logDir := t.TempDir()

	first, err := NewFileLoggerWithDir(logDir)
	if err != nil {
		t.Fatalf("first logger: %v", err)
	}
	first.Close()

	second, err := NewFileLoggerWithDir(logDir)
	if err != nil {
		t.Fatalf("second logger: %v", err)
	}
	defer second.Close()

	if first.RunFile() == second.RunFile() {
		t.Errorf("expected distinct run files, both are %q", first.RunFile())
	}

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("failed to read latest.log symlink: %v", err)
	}
	if target != filepath.Base(second.RunFile()) {
		t.Errorf("latest.log points to %q, want second run", target)
	}
}

func TestFileLogger_LogFingerprint(t *testing.T) {
	logger, err := NewFileLoggerWithDirAndLevel(t.TempDir(), "info")
	if err != nil {
		t.Fatalf("NewFileLoggerWithDirAndLevel() error = %v", err)
	}

	logger.LogFingerprint(testFingerprint(), 2*time.Second)
	logger.LogPlan("*.go", glob.Plan{Root: "/work", Pattern: glob.AnyFile})
	logger.LogDebug("hidden")
	logger.LogError("boom")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content := readFile(t, logger.RunFile())
	for _, want := range []string{
		"=== Fingerprint ===",
		`Spec: npm | "linux" | **/package-lock.json`,
		"Algorithm: sha256",
		"Segment file **/package-lock.json",
		"aaaa package-lock.json",
		"bbbb web/package-lock.json",
		"Key: npm|linux|",
		"Hash: feedface",
		"[ERROR] boom",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in run log", want)
		}
	}
	for _, unwanted := range []string{"hidden", "Plan *.go"} {
		if strings.Contains(content, unwanted) {
			t.Errorf("did not expect %q at info level", unwanted)
		}
	}
}

func TestFileLogger_CloseIdempotent(t *testing.T) {
	logger, err := NewFileLoggerWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileLoggerWithDir() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	// Writes after close are dropped
	logger.LogError("after close")
}
