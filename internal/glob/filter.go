package glob

// Predicate reports whether a path belongs to a file set. Predicates returned
// by this package are pure and safe for concurrent use.
type Predicate func(path string) bool

// Filter selects paths matched by an include glob and by none of its
// exclude globs.
type Filter struct {
	include  *Glob
	excludes []*Glob
}

// compileFunc resolves and compiles one pattern against a working directory.
type compileFunc func(workingDirectory, pattern string) (*Glob, error)

// NewFilter resolves the include pattern and every exclude pattern against
// workingDirectory and compiles them. The first invalid pattern aborts
// construction; an empty exclude list excludes nothing.
func NewFilter(workingDirectory, include string, excludes []string) (*Filter, error) {
	return newFilter(workingDirectory, include, excludes, CompileIn)
}

func newFilter(workingDirectory, include string, excludes []string, compile compileFunc) (*Filter, error) {
	inc, err := compile(workingDirectory, include)
	if err != nil {
		return nil, err
	}

	exc := make([]*Glob, 0, len(excludes))
	for _, pattern := range excludes {
		g, err := compile(workingDirectory, pattern)
		if err != nil {
			return nil, err
		}
		exc = append(exc, g)
	}

	return &Filter{include: inc, excludes: exc}, nil
}

// Match reports whether path matches the include glob and no exclude glob.
func (f *Filter) Match(path string) bool {
	if !f.include.Match(path) {
		return false
	}
	for _, g := range f.excludes {
		if g.Match(path) {
			return false
		}
	}
	return true
}

// Include returns the compiled include glob.
func (f *Filter) Include() *Glob {
	return f.include
}

// Excludes returns the compiled exclude globs.
func (f *Filter) Excludes() []*Glob {
	out := make([]*Glob, len(f.excludes))
	copy(out, f.excludes)
	return out
}

// Plan returns the enumeration plan of the include glob.
func (f *Filter) Plan() (Plan, error) {
	return f.include.Plan()
}

// BuildFilter compiles include and excludes against workingDirectory and
// returns the membership predicate of the resulting file set.
func BuildFilter(workingDirectory, include string, excludes []string) (Predicate, error) {
	f, err := NewFilter(workingDirectory, include, excludes)
	if err != nil {
		return nil, err
	}
	return f.Match, nil
}
