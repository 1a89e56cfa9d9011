package logger

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/harrison/cachekey/internal/fingerprint"
)

// colorScheme defines consistent colors for console output.
// Green: literal values
// Yellow: unbounded walks
// Cyan: labels and identifiers
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// levelColor returns the color of a level tag.
func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// formatSegment renders one fingerprint segment.
// Format: "<kind> <raw> = <value> [(<n> files)]"
func formatSegment(seg fingerprint.SegmentResult, colorOutput bool) string {
	kind := seg.Kind.String()
	value := seg.Value
	if seg.Kind == fingerprint.FileSegment {
		value = shortHash(value)
	}

	if colorOutput {
		scheme := newColorScheme()
		kind = scheme.label.Sprint(kind)
		if seg.Kind == fingerprint.LiteralSegment {
			value = scheme.success.Sprint(value)
		} else {
			value = scheme.value.Sprint(value)
		}
	}

	if seg.Kind == fingerprint.FileSegment {
		return fmt.Sprintf("%s %s = %s (%d files)", kind, seg.Raw, value, len(seg.Files))
	}
	return fmt.Sprintf("%s %s = %s", kind, seg.Raw, value)
}
