package fileutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/cachekey/internal/glob"
)

// ScanOptions configures the directory walk
type ScanOptions struct {
	// ExcludeDirs is a list of directory names to skip (e.g., ".git", "node_modules")
	ExcludeDirs []string
	// SkipHidden skips directories whose name starts with "."
	SkipHidden bool

	// named holds directory names the include glob spells out; they are
	// never skipped
	named map[string]bool
}

// ForInclude returns a copy of o that keeps descending into directories
// whose name appears as a literal segment of include below its first
// wildcard. A walk for "**/.git/config" therefore reaches .git even when
// ExcludeDirs lists it or SkipHidden is set.
func (o ScanOptions) ForInclude(include *glob.Glob) ScanOptions {
	out := o
	out.named = nil

	wildcard := false
	for _, seg := range include.Segments() {
		if seg.Kind != glob.SegmentLiteral {
			wildcard = true
			continue
		}
		if !wildcard {
			continue
		}
		if out.named == nil {
			out.named = make(map[string]bool)
		}
		out.named[seg.Text] = true
	}
	return out
}

// skipDir reports whether the walk prunes a directory called name.
func (o ScanOptions) skipDir(name string, excluded map[string]bool) bool {
	if o.named[name] {
		return false
	}
	return excluded[name] || (o.SkipHidden && strings.HasPrefix(name, "."))
}

// ScanResult contains the results of a plan scan
type ScanResult struct {
	// Files contains the absolute paths of all kept files, sorted
	Files []string
	// Errors contains non-fatal errors encountered during the walk
	Errors []error
	// DirsVisited counts the directories that were listed
	DirsVisited int
}

// ScanPlan walks the subtree described by plan and returns the files accepted by keep.
// A nil keep accepts every file the plan reaches.
func ScanPlan(ctx context.Context, plan glob.Plan, keep glob.Predicate, opts ScanOptions) (*ScanResult, error) {
	if plan.Root == "" || !filepath.IsAbs(plan.Root) {
		return nil, fmt.Errorf("plan root must be an absolute path, got %q", plan.Root)
	}
	if keep == nil {
		keep = func(string) bool { return true }
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	info, err := os.Stat(plan.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("plan root is not a directory: %s", plan.Root)
	}

	if plan.Pattern != glob.AnyFile {
		return scanExactFile(plan, keep, result)
	}

	excludeMap := make(map[string]bool, len(opts.ExcludeDirs))
	for _, dir := range opts.ExcludeDirs {
		excludeMap[dir] = true
	}

	err = filepath.WalkDir(plan.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}

		if path == plan.Root {
			result.DirsVisited++
			return nil
		}

		depth := relativeDepth(plan.Root, path)

		if d.IsDir() {
			if opts.skipDir(d.Name(), excludeMap) {
				return filepath.SkipDir
			}
			// Files under this directory would sit at depth+1.
			if plan.Depth == glob.TopOnly && depth >= plan.Levels {
				return filepath.SkipDir
			}
			result.DirsVisited++
			return nil
		}

		if plan.Depth == glob.TopOnly && depth > plan.Levels {
			return nil
		}

		regular, err := isRegularFile(path, d)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to stat %s: %w", path, err))
			return nil
		}
		if !regular || !keep(path) {
			return nil
		}

		result.Files = append(result.Files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort files for consistent output
	sort.Strings(result.Files)

	return result, nil
}

// scanExactFile handles plans whose pattern is a literal file name.
func scanExactFile(plan glob.Plan, keep glob.Predicate, result *ScanResult) (*ScanResult, error) {
	result.DirsVisited++

	path := filepath.Join(plan.Root, plan.Pattern)
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
		}
		return result, nil
	}

	if info.Mode().IsRegular() && keep(path) {
		result.Files = append(result.Files, path)
	}
	return result, nil
}

// relativeDepth returns how many levels below root path sits (1 for a direct child).
func relativeDepth(root, path string) int {
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// isRegularFile reports whether the entry is a regular file, following symlinks.
func isRegularFile(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
