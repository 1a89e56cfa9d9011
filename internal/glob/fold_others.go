//go:build !windows

package glob

// foldCase is the identity on case-sensitive filesystems.
func foldCase(s string) string {
	return s
}
