// Package logger provides logging implementations for cachekey.
//
// Loggers report enumeration plans, computed fingerprints and free-form
// leveled messages. Implementations are thread-safe and write to a console
// writer, a per-run log file, or both through Multi.
package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrison/cachekey/internal/fingerprint"
	"github.com/harrison/cachekey/internal/glob"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is implemented by every logger in this package.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)

	// LogPlan reports the enumeration plan derived for an include glob.
	LogPlan(include string, plan glob.Plan)
	// LogFingerprint reports a computed fingerprint and how long it took.
	LogFingerprint(fp *fingerprint.Fingerprint, duration time.Duration)
}

// ValidLevels lists the accepted log level names, most verbose first.
var ValidLevels = []string{"trace", "debug", "info", "warn", "error"}

// IsValidLevel reports whether level names a known log level (case-insensitive).
func IsValidLevel(level string) bool {
	normalized := strings.ToLower(strings.TrimSpace(level))
	for _, valid := range ValidLevels {
		if normalized == valid {
			return true
		}
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	if IsValidLevel(level) {
		return strings.ToLower(strings.TrimSpace(level))
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// levelEnabled reports whether a message at messageLevel passes configuredLevel.
func levelEnabled(configuredLevel, messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(configuredLevel)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder < time.Second {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, remainder/time.Second)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// planLine renders a plan the same way for every logger.
func planLine(include string, plan glob.Plan) string {
	line := fmt.Sprintf("Plan %s: root=%s pattern=%s depth=%s", include, plan.Root, plan.Pattern, plan.Depth)
	if plan.Depth == glob.TopOnly {
		line += fmt.Sprintf(" levels=%d", plan.Levels)
	}
	return line
}

// shortHash truncates a hex digest for display.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogPlan(string, glob.Plan) {}
func (n *NoOpLogger) LogFingerprint(*fingerprint.Fingerprint, time.Duration) {}

// MultiLogger fans every message out to several loggers.
type MultiLogger struct {
	loggers []Logger
}

// Multi returns a logger writing to every non-nil logger given.
func Multi(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogPlan(include string, plan glob.Plan) {
	for _, l := range m.loggers {
		l.LogPlan(include, plan)
	}
}

func (m *MultiLogger) LogFingerprint(fp *fingerprint.Fingerprint, duration time.Duration) {
	for _, l := range m.loggers {
		l.LogFingerprint(fp, duration)
	}
}
