package glob

import (
	"runtime"
	"strings"
)

var testWorkingDirectory = osPath(`C:\working`)

// osPath rewrites a Windows-style test path for the host OS: on other
// platforms backslashes become slashes and the drive letter is dropped.
func osPath(path string) string {
	if runtime.GOOS == "windows" {
		return path
	}

	path = strings.ReplaceAll(path, `\`, "/")
	if len(path) >= 2 && path[1] == ':' {
		return path[2:]
	}
	return path
}
