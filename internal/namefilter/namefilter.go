// Package namefilter decides whether a parsed real's name should be kept
// before it reaches chash.New, so an operator can exclude or include reals
// by name pattern at ingest time without editing the shard files themselves.
package namefilter

// Filter reports whether a given real name matches a configured pattern
// set.
type Filter interface {
	Match(name []byte) bool
}

// Options mirrors the pattern-compilation choices available to a caller.
type Options struct {
	Fixed      bool // treat every pattern as a literal string, never a regex
	PCRE       bool // use PCRE2 syntax instead of RE2
	IgnoreCase bool
	Invert     bool // keep names that do NOT match
}
