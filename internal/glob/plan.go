package glob

import "fmt"

// Depth says whether an enumeration descends below its root directory.
type Depth int

const (
	// TopOnly lists the root directory without unbounded recursion.
	TopOnly Depth = iota
	// AllDirectories lists the root directory and every directory below it.
	AllDirectories
)

// String returns the string representation of Depth.
func (d Depth) String() string {
	switch d {
	case TopOnly:
		return "top-only"
	case AllDirectories:
		return "all-directories"
	default:
		return fmt.Sprintf("Depth(%d)", int(d))
	}
}

// AnyFile is the search pattern used whenever a plan stops at a wildcard.
// Plans only bound the walk; exact matching is re-applied to every candidate.
const AnyFile = "*"

// Plan bounds the directory walk needed to find every file a glob can match.
type Plan struct {
	// Root is the longest absolute prefix of the glob made of literal segments.
	Root string
	// Pattern is the file name to look for under Root: the literal file name
	// when the glob has no wildcard at all, AnyFile otherwise.
	Pattern string
	// Depth is AllDirectories iff a "**" follows the literal prefix.
	Depth Depth
	// Levels is, for TopOnly plans, how many directory levels below Root a
	// matching file can sit at: 1 for "dir/*.txt", 2 for "dir/*/*.txt".
	// It is 0 for AllDirectories plans, which are unbounded.
	Levels int
}

// PlanEnumeration compiles an absolute include glob and derives its Plan.
func PlanEnumeration(absolutePattern string) (Plan, error) {
	g, err := Compile(absolutePattern)
	if err != nil {
		return Plan{}, err
	}
	return g.Plan()
}

// Plan derives the enumeration plan for the glob. A glob naming the
// filesystem root itself has no file to enumerate and fails with
// *InvalidPatternError.
func (g *Glob) Plan() (Plan, error) {
	if len(g.segments) == 0 {
		return Plan{}, &InvalidPatternError{Pattern: g.pattern, Reason: "pattern names no file below the root"}
	}

	stop := len(g.segments)
	for i, seg := range g.segments {
		if seg.Kind != SegmentLiteral {
			stop = i
			break
		}
	}

	if stop == len(g.segments) {
		last := len(g.segments) - 1
		return Plan{
			Root:    joinPath(g.volume, segmentTexts(g.segments[:last])),
			Pattern: g.segments[last].Text,
			Depth:   TopOnly,
			Levels:  1,
		}, nil
	}

	plan := Plan{
		Root:    joinPath(g.volume, segmentTexts(g.segments[:stop])),
		Pattern: AnyFile,
		Depth:   TopOnly,
		Levels:  len(g.segments) - stop,
	}
	for _, seg := range g.segments[stop:] {
		if seg.Kind == SegmentRecursive {
			plan.Depth = AllDirectories
			plan.Levels = 0
			break
		}
	}
	return plan, nil
}

func segmentTexts(segments []Segment) []string {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	return texts
}
