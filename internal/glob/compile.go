package glob

import (
	"strings"
)

// SegmentKind identifies how a compiled segment matches a path segment.
type SegmentKind uint8

const (
	// SegmentLiteral matches one path segment exactly.
	SegmentLiteral SegmentKind = iota
	// SegmentWildcard matches one path segment, each "*" standing for any run
	// of characters other than the separator.
	SegmentWildcard
	// SegmentRecursive ("**") matches zero or more whole path segments.
	SegmentRecursive
)

// String returns the string representation of SegmentKind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentWildcard:
		return "wildcard"
	case SegmentRecursive:
		return "recursive"
	default:
		return "unknown"
	}
}

// Segment is one compiled path component of a Glob.
type Segment struct {
	Kind SegmentKind
	// Text is the segment as written in the pattern.
	Text string

	// parts holds the case-folded text split around "*". A literal has a
	// single part, a wildcard at least two.
	parts []string
}

func newSegment(text string) Segment {
	switch {
	case text == "**":
		return Segment{Kind: SegmentRecursive, Text: text}
	case strings.Contains(text, "*"):
		return Segment{Kind: SegmentWildcard, Text: text, parts: strings.Split(foldCase(text), "*")}
	default:
		return Segment{Kind: SegmentLiteral, Text: text, parts: []string{foldCase(text)}}
	}
}

// matches reports whether a single case-folded path segment satisfies a
// literal or wildcard segment. Recursive segments are handled by the matcher.
func (s Segment) matches(name string) bool {
	switch s.Kind {
	case SegmentLiteral:
		return name == s.parts[0]
	case SegmentWildcard:
		return matchWildcard(s.parts, name)
	default:
		return false
	}
}

// matchWildcard matches name against parts joined by "*". Taking the leftmost
// occurrence of each middle part is always safe because "*" cannot fail to
// absorb whatever lies between two parts.
func matchWildcard(parts []string, name string) bool {
	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(name, first) {
		return false
	}
	rest := name[len(first):]

	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}

	return strings.HasSuffix(rest, last)
}

// Glob is a compiled absolute glob pattern.
type Glob struct {
	pattern  string // normalized pattern text
	volume   string // volume name as written
	segments []Segment
}

// Compile parses an absolute glob pattern. Forward slashes are accepted and
// "." / ".." segments are resolved before the pattern is split. Relative and
// empty patterns fail with *InvalidPatternError.
func Compile(absolutePattern string) (*Glob, error) {
	if err := checkEmpty(absolutePattern); err != nil {
		return nil, err
	}

	normalized, err := Normalize("", absolutePattern)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: absolutePattern, Reason: "pattern must be an absolute path", Err: err}
	}

	return compileNormalized(normalized), nil
}

// CompileIn resolves pattern against workingDirectory and compiles the result.
// An empty pattern fails with *InvalidPatternError; resolution failures are
// returned as *InvalidPathError.
func CompileIn(workingDirectory, pattern string) (*Glob, error) {
	if err := checkEmpty(pattern); err != nil {
		return nil, err
	}
	normalized, err := Normalize(workingDirectory, pattern)
	if err != nil {
		return nil, err
	}
	return compileNormalized(normalized), nil
}

func checkEmpty(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return &InvalidPatternError{Pattern: pattern, Reason: "pattern is empty"}
	}
	return nil
}

func compileNormalized(normalized string) *Glob {
	volume, names := splitPath(normalized)

	segments := make([]Segment, 0, len(names))
	for _, name := range names {
		seg := newSegment(name)
		// "**/**" matches exactly what "**" matches.
		if seg.Kind == SegmentRecursive && len(segments) > 0 && segments[len(segments)-1].Kind == SegmentRecursive {
			continue
		}
		segments = append(segments, seg)
	}

	return &Glob{
		pattern:  normalized,
		volume:   volume,
		segments: segments,
	}
}

// String returns the normalized pattern.
func (g *Glob) String() string {
	return g.pattern
}

// Segments returns a copy of the compiled segments.
func (g *Glob) Segments() []Segment {
	out := make([]Segment, len(g.segments))
	copy(out, g.segments)
	return out
}
