// Package glob decides which files on disk contribute to a cache fingerprint.
//
// It provides two things to callers that enumerate files:
//
//   - a Predicate built from one include glob and any number of exclude globs,
//     answering whether a candidate path belongs to the effective file set
//   - a Plan derived from the include glob (root directory, search pattern and
//     depth) that bounds the directory walk to the smallest subtree the glob
//     can reach
//
// # Pattern Syntax
//
// Patterns are paths in the host OS convention (forward slashes are accepted on
// every platform). Each path segment is one of:
//
//   - a literal, compared exactly (case-insensitively on Windows)
//   - a segment containing "*", where each "*" matches any run of characters
//     other than the path separator
//   - exactly "**", which matches zero or more whole path segments
//
// No other glob syntax is recognised: "?", "[...]" and "{...}" are literal text.
//
// Relative patterns are resolved against a working directory before they are
// compiled; compiled globs are always absolute.
//
// # Usage
//
//	match, err := glob.BuildFilter("/src/app", "**/*.go", []string{"vendor/**"})
//	if err != nil {
//	    return err
//	}
//	plan, err := glob.PlanEnumeration("/src/app/**/*.go")
//	// plan.Root == "/src/app", plan.Pattern == "*", plan.Depth == glob.AllDirectories
//
// Nothing in this package touches the filesystem. Compiled globs, filters and
// predicates are immutable and safe for concurrent use.
package glob
