package fileutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/cachekey/internal/glob"
)

// createTree writes each relative path under root with fixed content.
func createTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("test content"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

// relFiles converts absolute scan results back to slash-separated relative paths.
func relFiles(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("failed to relativize %s: %v", f, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScanPlan(t *testing.T) {
	// Create test directory structure:
	// tmpDir/
	//   bad.tmp
	//   good.tmp
	//   notes.txt
	//   package-lock.json
	//   src/
	//     a.go
	//     a_test.go
	//     pkg/
	//       b.go
	//       deep/
	//         c.go
	//   node_modules/
	//     dep/
	//       index.go
	//   .cache/
	//     hidden.go
	tmpDir := t.TempDir()
	createTree(t, tmpDir, []string{
		"bad.tmp",
		"good.tmp",
		"notes.txt",
		"package-lock.json",
		"src/a.go",
		"src/a_test.go",
		"src/pkg/b.go",
		"src/pkg/deep/c.go",
		"node_modules/dep/index.go",
		".cache/hidden.go",
	})

	tests := []struct {
		name     string
		include  string
		excludes []string
		opts     ScanOptions
		want     []string
	}{
		{
			name:     "top level wildcard with exclude",
			include:  "*.tmp",
			excludes: []string{"bad.tmp"},
			want:     []string{"good.tmp"},
		},
		{
			name:    "exact file",
			include: "package-lock.json",
			want:    []string{"package-lock.json"},
		},
		{
			name:    "exact file missing",
			include: "yarn.lock",
			want:    []string{},
		},
		{
			name:    "recursive from subdirectory",
			include: "src/**/*.go",
			want:    []string{"src/a.go", "src/a_test.go", "src/pkg/b.go", "src/pkg/deep/c.go"},
		},
		{
			name:     "recursive with exclude",
			include:  "src/**/*.go",
			excludes: []string{"**/*_test.go"},
			want:     []string{"src/a.go", "src/pkg/b.go", "src/pkg/deep/c.go"},
		},
		{
			name:    "wildcard directory level",
			include: "src/*/*.go",
			want:    []string{"src/pkg/b.go"},
		},
		{
			name:    "recursive from root sees everything",
			include: "**/*.go",
			want: []string{
				".cache/hidden.go",
				"node_modules/dep/index.go",
				"src/a.go", "src/a_test.go", "src/pkg/b.go", "src/pkg/deep/c.go",
			},
		},
		{
			name:    "exclude dirs and hidden",
			include: "**/*.go",
			opts:    ScanOptions{ExcludeDirs: []string{"node_modules"}, SkipHidden: true},
			want:    []string{"src/a.go", "src/a_test.go", "src/pkg/b.go", "src/pkg/deep/c.go"},
		},
		{
			name:    "no matches",
			include: "**/*.rs",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := glob.NewFilter(tmpDir, tt.include, tt.excludes)
			if err != nil {
				t.Fatalf("NewFilter() error = %v", err)
			}
			plan, err := filter.Plan()
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}

			result, err := ScanPlan(context.Background(), plan, filter.Match, tt.opts)
			if err != nil {
				t.Fatalf("ScanPlan() error = %v", err)
			}
			if len(result.Errors) != 0 {
				t.Errorf("unexpected non-fatal errors: %v", result.Errors)
			}

			got := relFiles(t, tmpDir, result.Files)
			if !equalStrings(got, tt.want) {
				t.Errorf("ScanPlan() files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanPlan_TopOnlyDoesNotDescend(t *testing.T) {
	tmpDir := t.TempDir()
	createTree(t, tmpDir, []string{"a.txt", "sub/b.txt", "sub/deeper/c.txt"})

	plan, err := glob.PlanEnumeration(filepath.Join(tmpDir, "*.txt"))
	if err != nil {
		t.Fatalf("PlanEnumeration() error = %v", err)
	}

	// Accept everything: the plan alone has to bound the walk.
	result, err := ScanPlan(context.Background(), plan, nil, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanPlan() error = %v", err)
	}

	got := relFiles(t, tmpDir, result.Files)
	if !equalStrings(got, []string{"a.txt"}) {
		t.Errorf("files = %v, want [a.txt]", got)
	}
	if result.DirsVisited != 1 {
		t.Errorf("DirsVisited = %d, want 1", result.DirsVisited)
	}
}

func TestScanPlan_AbsoluteSortedPaths(t *testing.T) {
	tmpDir := t.TempDir()
	createTree(t, tmpDir, []string{"zebra.md", "alpha.md", "middle.md", "beta/gamma.md"})

	filter, err := glob.NewFilter(tmpDir, "**/*.md", nil)
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	plan, _ := filter.Plan()

	result, err := ScanPlan(context.Background(), plan, filter.Match, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanPlan() error = %v", err)
	}

	for _, f := range result.Files {
		if !filepath.IsAbs(f) {
			t.Errorf("expected absolute path, got %s", f)
		}
	}
	for i := 1; i < len(result.Files); i++ {
		if result.Files[i-1] > result.Files[i] {
			t.Errorf("files not sorted: %s > %s", result.Files[i-1], result.Files[i])
		}
	}
	if len(result.Files) != 4 {
		t.Errorf("expected 4 files, got %d", len(result.Files))
	}
}

func TestScanPlan_MissingRoot(t *testing.T) {
	tmpDir := t.TempDir()

	plan, err := glob.PlanEnumeration(filepath.Join(tmpDir, "missing", "**", "*.go"))
	if err != nil {
		t.Fatalf("PlanEnumeration() error = %v", err)
	}

	result, err := ScanPlan(context.Background(), plan, nil, ScanOptions{})
	if err != nil {
		t.Fatalf("missing root should not be fatal, got %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("expected no files, got %v", result.Files)
	}
}

func TestScanPlan_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	tests := []struct {
		name string
		plan glob.Plan
	}{
		{
			name: "empty root",
			plan: glob.Plan{Pattern: glob.AnyFile},
		},
		{
			name: "relative root",
			plan: glob.Plan{Root: "relative", Pattern: glob.AnyFile},
		},
		{
			name: "root is a file",
			plan: glob.Plan{Root: filePath, Pattern: glob.AnyFile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanPlan(context.Background(), tt.plan, nil, ScanOptions{})
			if err == nil {
				t.Errorf("expected error, got result %+v", result)
			}
		})
	}
}

func TestScanPlan_ContextCancelled(t *testing.T) {
	tmpDir := t.TempDir()
	createTree(t, tmpDir, []string{"a/b.go", "c/d.go"})

	plan, err := glob.PlanEnumeration(filepath.Join(tmpDir, "**", "*.go"))
	if err != nil {
		t.Fatalf("PlanEnumeration() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ScanPlan(ctx, plan, nil, ScanOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScanPlan_SkipsDirectoriesMatchingPattern(t *testing.T) {
	tmpDir := t.TempDir()
	createTree(t, tmpDir, []string{"dir.go/inner.txt", "file.go"})

	plan, err := glob.PlanEnumeration(filepath.Join(tmpDir, "*.go"))
	if err != nil {
		t.Fatalf("PlanEnumeration() error = %v", err)
	}
	filter, err := glob.BuildFilter("", filepath.Join(tmpDir, "*.go"), nil)
	if err != nil {
		t.Fatalf("BuildFilter() error = %v", err)
	}

	result, err := ScanPlan(context.Background(), plan, filter, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanPlan() error = %v", err)
	}

	got := relFiles(t, tmpDir, result.Files)
	if !equalStrings(got, []string{"file.go"}) {
		t.Errorf("files = %v, want [file.go]", got)
	}
}

func TestScanPlan_IncludeNamesExcludedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	createTree(t, tmpDir, []string{
		".git/config",
		".git/HEAD",
		"sub/.git/config",
		"sub/.git/objects/config",
		"src/a.go",
	})

	filter, err := glob.NewFilter(tmpDir, "**/.git/config", nil)
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	plan, err := filter.Plan()
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	opts := ScanOptions{ExcludeDirs: []string{".git"}, SkipHidden: true}

	// Without the include's names the default exclusion hides every match.
	result, err := ScanPlan(context.Background(), plan, filter.Match, opts)
	if err != nil {
		t.Fatalf("ScanPlan() error = %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("files = %v, want none", relFiles(t, tmpDir, result.Files))
	}

	result, err = ScanPlan(context.Background(), plan, filter.Match, opts.ForInclude(filter.Include()))
	if err != nil {
		t.Fatalf("ScanPlan() error = %v", err)
	}
	got := relFiles(t, tmpDir, result.Files)
	want := []string{".git/config", "sub/.git/config"}
	if !equalStrings(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestScanOptions_ForInclude(t *testing.T) {
	tmpDir := t.TempDir()
	opts := ScanOptions{ExcludeDirs: []string{".git", "vendor"}, SkipHidden: true}

	tests := []struct {
		include string
		named   []string
		pruned  []string
	}{
		{include: "**/.git/config", named: []string{".git", "config"}, pruned: []string{"vendor", ".cache"}},
		{include: "vendor/*.go", pruned: []string{".git", "vendor", ".cache"}},
		{include: "*/vendor/**/*.go", named: []string{"vendor"}, pruned: []string{".git", ".cache"}},
	}

	for _, tt := range tests {
		t.Run(tt.include, func(t *testing.T) {
			g, err := glob.CompileIn(tmpDir, tt.include)
			if err != nil {
				t.Fatalf("CompileIn() error = %v", err)
			}
			scoped := opts.ForInclude(g)
			for _, name := range tt.named {
				if scoped.skipDir(name, map[string]bool{".git": true, "vendor": true}) {
					t.Errorf("%s: directory %q should not be skipped", tt.include, name)
				}
			}
			for _, name := range tt.pruned {
				if !scoped.skipDir(name, map[string]bool{".git": true, "vendor": true}) {
					t.Errorf("%s: directory %q should be skipped", tt.include, name)
				}
			}
		})
	}

	if len(opts.named) != 0 {
		t.Error("ForInclude must not modify the receiver")
	}
}
