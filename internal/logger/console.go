package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/cachekey/internal/fingerprint"
	"github.com/harrison/cachekey/internal/glob"
)

// ConsoleLogger logs progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// logLevel determines the minimum log level for messages to be output.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs and NO_COLOR is unset.
func isTerminal(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || (f != os.Stdout && f != os.Stderr) {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Level returns the configured minimum log level.
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return levelEnabled(cl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
// Format: "[HH:MM:SS] [WARN] <message>"
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
// Format: "[HH:MM:SS] [ERROR] <message>"
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", timestamp(), levelColor(level).Sprint(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message)
	}
	cl.write(formatted)
}

// LogPlan logs the enumeration plan of an include glob at DEBUG level.
// Format: "[HH:MM:SS] Plan <include>: root=<root> pattern=<p> depth=<d> [levels=<n>]"
func (cl *ConsoleLogger) LogPlan(include string, plan glob.Plan) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	line := planLine(include, plan)
	if cl.colorOutput {
		scheme := newColorScheme()
		if plan.Depth == glob.AllDirectories {
			line = scheme.warn.Sprint(line)
		} else {
			line = scheme.label.Sprint(line)
		}
	}
	cl.write(fmt.Sprintf("[%s] %s\n", timestamp(), line))
}

// LogFingerprint logs a computed fingerprint at INFO level, with one
// DEBUG line per segment.
// Format: "[HH:MM:SS] Fingerprint <hash> (<n> files, <segments> segments, <duration>)"
func (cl *ConsoleLogger) LogFingerprint(fp *fingerprint.Fingerprint, duration time.Duration) {
	if cl.writer == nil || fp == nil || !cl.shouldLog("info") {
		return
	}

	var b strings.Builder
	ts := timestamp()

	hash := fp.Hash
	if cl.colorOutput {
		hash = color.New(color.Bold).Sprint(hash)
	}
	fmt.Fprintf(&b, "[%s] Fingerprint %s (%d files, %d segments, %s)\n",
		ts, hash, fp.FileCount(), len(fp.Segments), formatDuration(duration))

	if cl.shouldLog("debug") {
		for _, seg := range fp.Segments {
			fmt.Fprintf(&b, "[%s]   %s\n", ts, formatSegment(seg, cl.colorOutput))
		}
	}

	cl.write(b.String())
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(s))
}
