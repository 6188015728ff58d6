package namefilter

import "bytes"

// boyerMooreFilter matches a single literal substring against a real name,
// using bytes.Index's Horspool-family implementation rather than a
// hand-rolled bad-character table — a real name is at most a few hundred
// bytes, well under where a custom skip table would pay for itself.
type boyerMooreFilter struct {
	pattern    []byte
	ignoreCase bool
	invert     bool
}

func newBoyerMooreFilter(pattern string, ignoreCase, invert bool) *boyerMooreFilter {
	p := []byte(pattern)
	if ignoreCase {
		p = bytes.ToLower(p)
	}
	return &boyerMooreFilter{pattern: p, ignoreCase: ignoreCase, invert: invert}
}

func (f *boyerMooreFilter) Match(name []byte) bool {
	haystack := name
	if f.ignoreCase {
		haystack = bytes.ToLower(name)
	}
	found := bytes.Contains(haystack, f.pattern)
	if f.invert {
		return !found
	}
	return found
}
