//go:build windows

package glob

import "strings"

// Windows paths compare case-insensitively, so both patterns and candidates
// are folded to lower case before comparison.
func foldCase(s string) string {
	return strings.ToLower(s)
}
