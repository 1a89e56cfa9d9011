package glob

import (
	"fmt"
	"strings"
)

// InvalidPathError reports a path that could not be resolved to an absolute path,
// typically a relative path supplied without a usable working directory.
type InvalidPathError struct {
	Path             string
	WorkingDirectory string
	Reason           string
}

func (e *InvalidPathError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason))
	if e.WorkingDirectory != "" {
		sb.WriteString(fmt.Sprintf(" (working directory %q)", e.WorkingDirectory))
	}
	return sb.String()
}

// InvalidPatternError reports glob text that cannot be compiled or planned.
type InvalidPatternError struct {
	Pattern string
	Reason  string
	Err     error // underlying cause, if any
}

func (e *InvalidPatternError) Error() string {
	msg := fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause so errors.As can reach an InvalidPathError.
func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}
