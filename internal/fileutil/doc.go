// Package fileutil walks the filesystem on behalf of an enumeration plan.
//
// The glob package decides which files belong to a fingerprint and how far a
// walk has to reach; this package performs the walk. ScanPlan starts at the
// plan's root, descends only as deep as the plan allows, and keeps the files
// the predicate accepts.
//
// # Behaviour
//
//   - Exact-file plans (no wildcard in the include glob) stat a single file
//     instead of listing the directory.
//   - TopOnly plans descend at most plan.Levels directory levels below the
//     root; AllDirectories plans descend without limit.
//   - Directories named in ScanOptions.ExcludeDirs are skipped, as are hidden
//     directories when ScanOptions.SkipHidden is set. Options returned by
//     ForInclude exempt the directory names the include glob spells out
//     below its first wildcard, so "**/.git/config" is still found with the
//     default ".git" exclusion.
//   - Results are absolute paths sorted alphabetically, so identical trees
//     always produce identical file lists.
//   - A missing root is not an error: the result is simply empty.
//   - Errors below the root (permission denied on a subdirectory, a file
//     vanishing mid-walk) are collected in ScanResult.Errors and the walk
//     continues. Only failures that prevent the walk from starting are fatal.
//
// # Usage
//
//	filter, err := glob.NewFilter(wd, "**/*.go", []string{"vendor/**"})
//	if err != nil {
//	    return err
//	}
//	plan, err := filter.Plan()
//	if err != nil {
//	    return err
//	}
//	opts := fileutil.ScanOptions{ExcludeDirs: []string{".git"}}
//	result, err := fileutil.ScanPlan(ctx, plan, filter.Match, opts.ForInclude(filter.Include()))
//	if err != nil {
//	    return err
//	}
//	for _, file := range result.Files {
//	    fmt.Println(file)
//	}
package fileutil
