package namefilter

import "regexp"

// regexFilter matches a real name against Go's RE2 engine, used whenever a
// pattern needs more than a literal substring.
type regexFilter struct {
	re     *regexp.Regexp
	invert bool
}

func newRegexFilter(pattern string, ignoreCase, invert bool) (*regexFilter, error) {
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &regexFilter{re: re, invert: invert}, nil
}

func (f *regexFilter) Match(name []byte) bool {
	found := f.re.Match(name)
	if f.invert {
		return !found
	}
	return found
}
