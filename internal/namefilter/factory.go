package namefilter

import "fmt"

// New builds a Filter from one or more name patterns. Selection mirrors the
// teacher's grep matcher: PCRE syntax when requested, a single-literal
// Boyer-Moore/Horspool matcher for one fixed pattern, Aho-Corasick for many
// fixed patterns in one pass, and RE2 regexp otherwise.
func New(patterns []string, opts Options) (Filter, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("namefilter: no patterns provided")
	}

	if opts.PCRE {
		return newPCREFilter(combine(patterns), opts.IgnoreCase, opts.Invert)
	}

	if opts.Fixed || allLiteral(patterns) {
		if len(patterns) == 1 {
			return newBoyerMooreFilter(patterns[0], opts.IgnoreCase, opts.Invert), nil
		}
		return newAhoCorasickFilter(patterns, opts.IgnoreCase, opts.Invert), nil
	}

	return newRegexFilter(combine(patterns), opts.IgnoreCase, opts.Invert)
}

func allLiteral(patterns []string) bool {
	for _, p := range patterns {
		if !isLiteral(p) {
			return false
		}
	}
	return true
}

// combine joins multiple patterns into one alternation, so a name matching
// any one pattern matches the combined expression.
func combine(patterns []string) string {
	if len(patterns) == 1 {
		return patterns[0]
	}
	combined := ""
	for i, p := range patterns {
		if i > 0 {
			combined += "|"
		}
		combined += "(?:" + p + ")"
	}
	return combined
}
