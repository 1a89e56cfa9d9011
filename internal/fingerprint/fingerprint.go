// Package fingerprint turns a cache key spec into a content-addressed key.
//
// Literal segments of the key spec are used as written. File segments are
// resolved with the glob package, enumerated with fileutil, and reduced to a
// digest of every selected file's relative path and contents. The same key spec
// over the same tree always yields the same key.
package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/harrison/cachekey/internal/fileutil"
	"github.com/harrison/cachekey/internal/glob"
)

// ErrNoMatchingFiles is returned when a file segment selects no files.
var ErrNoMatchingFiles = errors.New("no matching files")

// Logger receives diagnostics while a fingerprint is computed.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
	LogPlan(include string, plan glob.Plan)
}

type noopLogger struct{}

func (noopLogger) LogDebug(string)           {}
func (noopLogger) LogWarn(string)            {}
func (noopLogger) LogPlan(string, glob.Plan) {}

// enumeration is one include of a file segment: its filter and the walk
// that finds its candidates.
type enumeration struct {
	filter *glob.Filter
	plan   glob.Plan
}

// FileDigest records the digest of one file selected by a file segment.
type FileDigest struct {
	// Path is the absolute path of the file
	Path string `json:"path" yaml:"path"`
	// Rel is Path relative to the working directory, slash-separated.
	// Files outside the working directory keep their absolute path.
	Rel string `json:"rel" yaml:"rel"`
	// Digest is the hex digest of the file contents
	Digest string `json:"digest" yaml:"digest"`
}

// SegmentResult is the resolved value of one key segment.
type SegmentResult struct {
	Raw   string      `json:"raw" yaml:"raw"`
	Kind  SegmentKind `json:"kind" yaml:"kind"`
	Value string      `json:"value" yaml:"value"`
	// Files is empty for literal segments
	Files []FileDigest `json:"files,omitempty" yaml:"files,omitempty"`
}

// Fingerprint is the cache key computed from a key spec.
type Fingerprint struct {
	Spec             string          `json:"spec" yaml:"spec"`
	WorkingDirectory string          `json:"working_directory" yaml:"working_directory"`
	Algorithm        Algorithm       `json:"algorithm" yaml:"algorithm"`
	Segments         []SegmentResult `json:"segments" yaml:"segments"`

	// Key joins the segment values with "|"
	Key string `json:"key" yaml:"key"`
	// Hash is the SHA256 of Key
	Hash string `json:"hash" yaml:"hash"`
}

// FileCount returns the number of files across all file segments.
func (f *Fingerprint) FileCount() int {
	n := 0
	for _, seg := range f.Segments {
		n += len(seg.Files)
	}
	return n
}

// Options configures a Creator.
type Options struct {
	// WorkingDirectory resolves relative globs; it must be absolute
	WorkingDirectory string
	// Algorithm digests file contents (default SHA256)
	Algorithm Algorithm
	// MaxConcurrency bounds parallel file digests (0 = number of CPUs)
	MaxConcurrency int
	// Scan is passed to the directory walker
	Scan fileutil.ScanOptions
	// Cache memoizes compiled globs; nil compiles every pattern afresh
	Cache *glob.Cache
	// Logger receives diagnostics; nil discards them
	Logger Logger
}

// Creator computes fingerprints for key specs.
type Creator struct {
	opts Options
}

// NewCreator validates opts and returns a Creator.
func NewCreator(opts Options) (*Creator, error) {
	if opts.WorkingDirectory == "" || !filepath.IsAbs(opts.WorkingDirectory) {
		return nil, fmt.Errorf("working directory must be an absolute path, got %q", opts.WorkingDirectory)
	}
	opts.WorkingDirectory = filepath.Clean(opts.WorkingDirectory)

	algorithm, err := ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}
	opts.Algorithm = algorithm

	if opts.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max concurrency must be >= 0, got %d", opts.MaxConcurrency)
	}
	if opts.MaxConcurrency == 0 {
		opts.MaxConcurrency = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	return &Creator{opts: opts}, nil
}

// Create parses spec and computes its fingerprint. Every glob in the key spec is
// compiled and planned before any file is read, and each plan is passed to
// the Logger.
func (c *Creator) Create(ctx context.Context, spec string) (*Fingerprint, error) {
	segments, err := ParseKeySpec(spec)
	if err != nil {
		return nil, err
	}

	enumerations := make([][]enumeration, len(segments))
	for i, seg := range segments {
		if seg.Kind != FileSegment {
			continue
		}
		for _, include := range seg.Includes {
			f, err := c.opts.Cache.NewFilter(c.opts.WorkingDirectory, include, seg.Excludes)
			if err != nil {
				return nil, fmt.Errorf("key segment %s: %w", seg.Raw, err)
			}
			plan, err := f.Plan()
			if err != nil {
				return nil, fmt.Errorf("key segment %s: %w", seg.Raw, err)
			}
			c.opts.Logger.LogPlan(include, plan)
			enumerations[i] = append(enumerations[i], enumeration{filter: f, plan: plan})
		}
	}

	fp := &Fingerprint{
		Spec:             spec,
		WorkingDirectory: c.opts.WorkingDirectory,
		Algorithm:        c.opts.Algorithm,
		Segments:         make([]SegmentResult, 0, len(segments)),
	}

	values := make([]string, 0, len(segments))
	for i, seg := range segments {
		result := SegmentResult{Raw: seg.Raw, Kind: seg.Kind}

		if seg.Kind == LiteralSegment {
			result.Value = seg.Value
		} else {
			files, err := c.collectFiles(ctx, enumerations[i])
			if err != nil {
				return nil, fmt.Errorf("key segment %s: %w", seg.Raw, err)
			}
			if len(files) == 0 {
				return nil, fmt.Errorf("key segment %s: %w", seg.Raw, ErrNoMatchingFiles)
			}

			digests, err := c.digestFiles(ctx, files)
			if err != nil {
				return nil, fmt.Errorf("key segment %s: %w", seg.Raw, err)
			}
			result.Files = digests
			result.Value = segmentValue(digests)
			c.opts.Logger.LogDebug(fmt.Sprintf("segment %s: %d files, digest %s", seg.Raw, len(digests), result.Value))
		}

		fp.Segments = append(fp.Segments, result)
		values = append(values, result.Value)
	}

	fp.Key = strings.Join(values, "|")
	fp.Hash = sha256Hash(fp.Key)
	return fp, nil
}

// collectFiles enumerates every include of a file segment and returns the
// sorted union of the selected files.
func (c *Creator) collectFiles(ctx context.Context, enumerations []enumeration) ([]string, error) {
	seen := make(map[string]bool)
	for _, e := range enumerations {
		result, err := fileutil.ScanPlan(ctx, e.plan, e.filter.Match, c.opts.Scan.ForInclude(e.filter.Include()))
		if err != nil {
			return nil, err
		}
		c.opts.Logger.LogDebug(fmt.Sprintf("enumerated %s: %d files in %d directories", e.filter.Include(), len(result.Files), result.DirsVisited))
		for _, scanErr := range result.Errors {
			c.opts.Logger.LogWarn(scanErr.Error())
		}
		for _, file := range result.Files {
			seen[file] = true
		}
	}

	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

// digestFiles hashes files with bounded parallelism, preserving input order.
func (c *Creator) digestFiles(ctx context.Context, files []string) ([]FileDigest, error) {
	digests := make([]FileDigest, len(files))
	errs := make([]error, len(files))

	semaphore := make(chan struct{}, c.opts.MaxConcurrency)
	var wg sync.WaitGroup

	for i, path := range files {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			digest, err := digestFile(path, c.opts.Algorithm)
			if err != nil {
				errs[i] = err
				return
			}
			digests[i] = FileDigest{
				Path:   path,
				Rel:    c.relative(path),
				Digest: digest,
			}
		}(i, path)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return digests, nil
}

// relative returns path relative to the working directory in slash form, or
// the absolute path when it lies outside the working directory.
func (c *Creator) relative(path string) string {
	rel, err := filepath.Rel(c.opts.WorkingDirectory, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// segmentValue reduces the digests of a file segment to a single digest.
// Files are already sorted, so the value is independent of walk order.
func segmentValue(digests []FileDigest) string {
	var builder strings.Builder
	for _, d := range digests {
		builder.WriteString(d.Rel)
		builder.WriteString("\t")
		builder.WriteString(d.Digest)
		builder.WriteString("\n")
	}
	return sha256Hash(builder.String())
}
