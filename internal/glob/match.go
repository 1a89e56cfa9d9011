package glob

// Match reports whether candidate is selected by the glob. The candidate is
// normalized with the same separator and case conventions as the pattern;
// relative or empty candidates never match. Match never fails.
func (g *Glob) Match(candidate string) bool {
	if g == nil {
		return false
	}

	normalized, err := Normalize("", candidate)
	if err != nil {
		return false
	}

	volume, names := splitPath(normalized)
	if foldCase(volume) != foldCase(g.volume) {
		return false
	}
	for i, name := range names {
		names[i] = foldCase(name)
	}

	return matchSegments(g.segments, names)
}

// matchSegments aligns pattern segments with path segments. Every "**" may
// consume zero or more path segments; the match succeeds if any choice lets
// the remaining pattern align exactly with the remaining path.
//
// Each (recursive segment, path position) pair is explored at most once, so
// patterns with several "**" stay polynomial in the path length.
func matchSegments(pattern []Segment, path []string) bool {
	var exhausted map[[2]int]bool

	var match func(i, j int) bool
	match = func(i, j int) bool {
		for i < len(pattern) {
			seg := pattern[i]
			if seg.Kind == SegmentRecursive {
				key := [2]int{i, j}
				if exhausted[key] {
					return false
				}
				for k := j; k <= len(path); k++ {
					if match(i+1, k) {
						return true
					}
				}
				if exhausted == nil {
					exhausted = make(map[[2]int]bool)
				}
				exhausted[key] = true
				return false
			}

			if j >= len(path) || !seg.matches(path[j]) {
				return false
			}
			i++
			j++
		}
		return j == len(path)
	}

	return match(0, 0)
}
