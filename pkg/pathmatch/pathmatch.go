// Package pathmatch matches slash-separated relative paths against glob patterns.
//
// Patterns containing a "/" are matched against the whole path, where
//   - * matches any run of characters, including /
//   - ? matches exactly one character, including /
//   - [...] and [!...] match one character from (or outside) a set
//   - \ escapes the next character
//
// Patterns without a "/" are matched against the last path element only, so
// "*.log" excludes log files at any depth.
package pathmatch

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"
)

// Pattern is one compiled glob.
type Pattern struct {
	source   string
	re       *regexp.Regexp
	basename bool
}

// Compile parses a single glob. Leading "./" and trailing "/" are ignored.
func Compile(glob string) (*Pattern, error) {
	glob = strings.TrimSuffix(strings.TrimPrefix(glob, "./"), "/")

	if cached, ok := cache.Load(glob); ok {
		pattern, _ := cached.(*Pattern) //nolint:errcheck // only *Pattern is stored

		return pattern, nil
	}

	expr, err := translate(glob)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", glob, err)
	}

	pattern := &Pattern{
		source:   glob,
		re:       re,
		basename: !strings.Contains(glob, "/"),
	}

	cache.Store(glob, pattern)

	return pattern, nil
}

// String returns the normalised glob.
func (p *Pattern) String() string {
	return p.source
}

// Match reports whether the slash-separated relative path matches.
func (p *Pattern) Match(name string) bool {
	if p.basename {
		name = path.Base(name)
	}

	return p.re.MatchString(name)
}

// Match compiles glob and matches it against name.
func Match(glob, name string) (bool, error) {
	p, err := Compile(glob)
	if err != nil {
		return false, err
	}

	return p.Match(name), nil
}

// Set is an ordered list of patterns. The zero value matches nothing.
type Set []*Pattern

// NewSet compiles all globs.
func NewSet(globs []string) (Set, error) {
	set := make(Set, 0, len(globs))

	for _, g := range globs {
		p, err := Compile(g)
		if err != nil {
			return nil, err
		}

		set = append(set, p)
	}

	return set, nil
}

// MatchAny reports whether any pattern in the set matches name.
func (s Set) MatchAny(name string) bool {
	for _, p := range s {
		if p.Match(name) {
			return true
		}
	}

	return false
}

var cache sync.Map //nolint:gochecknoglobals // compiled patterns are immutable

// translate turns a glob into an anchored regular expression.
func translate(glob string) (string, error) {
	var expr strings.Builder

	expr.WriteByte('^')

	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			expr.WriteString(".*")
		case '?':
			expr.WriteByte('.')
		case '\\':
			if i+1 == len(glob) {
				return "", fmt.Errorf("pattern %q: trailing backslash", glob)
			}

			i++
			expr.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		case '[':
			class, n, err := bracket(glob[i:])
			if err != nil {
				return "", fmt.Errorf("pattern %q: %w", glob, err)
			}

			expr.WriteString(class)

			i += n - 1
		default:
			expr.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		}
	}

	expr.WriteByte('$')

	return expr.String(), nil
}

// bracket converts the character class at the start of s and returns the regexp
// form and the number of glob bytes consumed.
func bracket(s string) (string, int, error) {
	end := 1
	if end < len(s) && s[end] == '!' {
		end++
	}

	// A ']' right after the opening (or the negation) is a literal member.
	if end < len(s) && s[end] == ']' {
		end++
	}

	for end < len(s) && s[end] != ']' {
		end++
	}

	if end >= len(s) {
		return "", 0, fmt.Errorf("unclosed character class")
	}

	body := s[1:end]
	negate := strings.HasPrefix(body, "!")
	body = strings.TrimPrefix(body, "!")
	body = strings.ReplaceAll(body, `\`, `\\`)

	if strings.HasPrefix(body, "]") {
		body = `\]` + body[1:]
	}

	if negate {
		return "[^" + body + "]", end + 1, nil
	}

	return "[" + body + "]", end + 1, nil
}
