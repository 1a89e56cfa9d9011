package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/cachekey/internal/fingerprint"
	"github.com/harrison/cachekey/internal/glob"
)

// FileLogger logs cachekey runs to files in a log directory.
// It creates one timestamped log file per run and maintains a latest.log
// symlink pointing to the most recent run. It is thread-safe and supports
// log level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to .cachekey/logs/ in the
// current working directory at level "info".
func NewFileLogger() (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(filepath.Join(".cachekey", "logs"), "info")
}

// NewFileLoggerWithDir creates a new FileLogger with a custom log directory.
// Uses default log level "info".
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a new FileLogger with a custom log directory and log level.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log, with a counter when several runs share a second
	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))
	for i := 1; ; i++ {
		if _, err := os.Lstat(runFile); os.IsNotExist(err) {
			break
		}
		runFile = filepath.Join(logDir, fmt.Sprintf("run-%s-%d.log", stamp, i))
	}

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== cachekey Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// RunFile returns the path of this run's log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return levelEnabled(fl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogPlan logs the enumeration plan of an include glob at DEBUG level.
func (fl *FileLogger) LogPlan(include string, plan glob.Plan) {
	if !fl.shouldLog("debug") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] %s\n", timestamp(), planLine(include, plan)))
}

// LogFingerprint logs a computed fingerprint at INFO level. Unlike the
// console, the file always records every segment and every selected file.
func (fl *FileLogger) LogFingerprint(fp *fingerprint.Fingerprint, duration time.Duration) {
	if fp == nil || !fl.shouldLog("info") {
		return
	}

	var b strings.Builder
	ts := timestamp()
	fmt.Fprintf(&b, "[%s] === Fingerprint ===\n", ts)
	fmt.Fprintf(&b, "[%s] Spec: %s\n", ts, fp.Spec)
	fmt.Fprintf(&b, "[%s] Working directory: %s\n", ts, fp.WorkingDirectory)
	fmt.Fprintf(&b, "[%s] Algorithm: %s\n", ts, fp.Algorithm)
	for _, seg := range fp.Segments {
		fmt.Fprintf(&b, "[%s] Segment %s\n", ts, formatSegment(seg, false))
		for _, f := range seg.Files {
			fmt.Fprintf(&b, "[%s]   %s %s\n", ts, f.Digest, f.Rel)
		}
	}
	fmt.Fprintf(&b, "[%s] Key: %s\n", ts, fp.Key)
	fmt.Fprintf(&b, "[%s] Hash: %s\n", ts, fp.Hash)
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(duration))

	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log file.
// It is safe to call Close multiple times.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write for real-time logging
		fl.runLog.Sync()
	}
}
