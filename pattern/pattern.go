// Package pattern resolves wildcard queries against indexed terms. `*`
// matches any run of characters, `?` matches exactly one; every other rune
// is literal, so a `.` or `+` in a pattern never behaves as regex syntax.
package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// HasWildcard reports whether s contains a wildcard metacharacter.
func HasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Compile translates a wildcard pattern into an anchored regular expression.
// The match is full-string: "a*c" matches "abc" and "ac" but not "abcd".
func Compile(pat string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pat {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Matches returns the terms matching the wildcard pattern, sorted lexically
// for determinism. The terms slice must be an immutable snapshot.
func Matches(terms []string, pat string) ([]string, error) {
	re, err := Compile(pat)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, term := range terms {
		if re.MatchString(term) {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out, nil
}
