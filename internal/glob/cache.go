package glob

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes compiled globs by their normalized pattern text. It never
// changes what a pattern matches and is safe for concurrent use. A nil *Cache
// compiles every pattern afresh.
type Cache struct {
	globs *lru.Cache[string, *Glob]
}

// NewCache creates a Cache holding at most size compiled globs.
func NewCache(size int) (*Cache, error) {
	globs, err := lru.New[string, *Glob](size)
	if err != nil {
		return nil, fmt.Errorf("create pattern cache: %w", err)
	}
	return &Cache{globs: globs}, nil
}

// CompileIn is the cached counterpart of the package-level CompileIn.
func (c *Cache) CompileIn(workingDirectory, pattern string) (*Glob, error) {
	if c == nil {
		return CompileIn(workingDirectory, pattern)
	}
	if err := checkEmpty(pattern); err != nil {
		return nil, err
	}

	normalized, err := Normalize(workingDirectory, pattern)
	if err != nil {
		return nil, err
	}
	if g, ok := c.globs.Get(normalized); ok {
		return g, nil
	}

	g := compileNormalized(normalized)
	c.globs.Add(normalized, g)
	return g, nil
}

// NewFilter is the cached counterpart of the package-level NewFilter.
func (c *Cache) NewFilter(workingDirectory, include string, excludes []string) (*Filter, error) {
	return newFilter(workingDirectory, include, excludes, c.CompileIn)
}

// BuildFilter is the cached counterpart of the package-level BuildFilter.
func (c *Cache) BuildFilter(workingDirectory, include string, excludes []string) (Predicate, error) {
	f, err := c.NewFilter(workingDirectory, include, excludes)
	if err != nil {
		return nil, err
	}
	return f.Match, nil
}

// Len returns the number of cached globs.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.globs.Len()
}
