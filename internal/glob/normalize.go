package glob

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize returns path as an absolute, cleaned, OS-native path.
//
// An absolute path is returned with its separators converted to the native
// separator and "." and ".." segments resolved lexically; workingDirectory is
// ignored. A relative path is joined onto workingDirectory first, which must
// then be absolute. Normalize never touches the filesystem.
func Normalize(workingDirectory, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &InvalidPathError{Path: path, WorkingDirectory: workingDirectory, Reason: "path is empty"}
	}

	p := filepath.FromSlash(path)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	// "C:file" is relative to the current directory of drive C, which we cannot know.
	if filepath.VolumeName(p) != "" {
		return "", &InvalidPathError{Path: path, WorkingDirectory: workingDirectory, Reason: "drive-relative paths are not supported"}
	}

	if workingDirectory == "" {
		return "", &InvalidPathError{Path: path, Reason: "relative path requires a working directory"}
	}

	wd := filepath.FromSlash(workingDirectory)
	if !filepath.IsAbs(wd) {
		return "", &InvalidPathError{Path: path, WorkingDirectory: workingDirectory, Reason: "working directory is not absolute"}
	}

	// Rooted but volume-less ("\dir" on Windows) takes the working directory's volume.
	if os.IsPathSeparator(p[0]) {
		return filepath.Clean(filepath.VolumeName(wd) + p), nil
	}

	return filepath.Join(wd, p), nil
}

// splitPath breaks a normalized absolute path into its volume name and
// non-empty segments. The root itself has no segments.
func splitPath(abs string) (string, []string) {
	volume := filepath.VolumeName(abs)
	rest := abs[len(volume):]

	parts := strings.Split(rest, string(filepath.Separator))
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return volume, segments
}

// joinPath is the inverse of splitPath.
func joinPath(volume string, segments []string) string {
	return volume + string(filepath.Separator) + strings.Join(segments, string(filepath.Separator))
}
