package namefilter

import "strings"

// isLiteral reports whether pattern contains no regex metacharacters and
// can be matched as a fixed string instead of compiled as a regex.
func isLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, `\.+*?()|[]{}^$`)
}
