package namefilter

import "go.elara.ws/pcre"

// pcreFilter matches a real name against a PCRE2-syntax pattern, for
// operators whose naming convention needs lookaround or backreferences that
// RE2 can't express.
type pcreFilter struct {
	re     *pcre.Regexp
	invert bool
}

func newPCREFilter(pattern string, ignoreCase, invert bool) (*pcreFilter, error) {
	var opts pcre.CompileOption
	if ignoreCase {
		opts |= pcre.Caseless
	}
	re, err := pcre.CompileOpts(pattern, opts)
	if err != nil {
		return nil, err
	}
	return &pcreFilter{re: re, invert: invert}, nil
}

func (f *pcreFilter) Match(name []byte) bool {
	found := f.re.Match(name)
	if f.invert {
		return !found
	}
	return found
}
