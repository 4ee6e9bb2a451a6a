package smith

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

type rule struct {
	negate bool
	globs  []glob.Glob
}

func (r rule) match(path string) bool {
	for _, g := range r.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Matcher applies an ordered list of glob patterns. Positive patterns add
// matches, patterns starting with "!" remove them again. "**/" matches zero
// or more directories.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles patterns. A list made only of negations starts from
// "match everything".
func NewMatcher(patterns ...string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		negate := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		r := rule{negate: negate}
		for _, variant := range expandGlobstar(p) {
			g, err := glob.Compile(variant, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			r.globs = append(r.globs, g)
		}
		m.rules = append(m.rules, r)
	}
	return m, nil
}

// MustMatcher is NewMatcher for patterns known at compile time.
func MustMatcher(patterns ...string) *Matcher {
	m, err := NewMatcher(patterns...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Matcher) Match(path string) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}
	matched := m.rules[0].negate
	for _, r := range m.rules {
		if r.negate {
			if matched && r.match(path) {
				matched = false
			}
		} else if !matched && r.match(path) {
			matched = true
		}
	}
	return matched
}

// Filter returns the matching keys of files in lexical order.
func (m *Matcher) Filter(files Files) []string {
	var out []string
	for _, k := range files.Sorted() {
		if m.Match(k) {
			out = append(out, k)
		}
	}
	return out
}

// expandGlobstar lists the variants of p with every "**/" either kept or
// dropped, so "a/**/b" also matches "a/b".
func expandGlobstar(p string) []string {
	i := strings.Index(p, "**/")
	if i < 0 {
		return []string{p}
	}
	var out []string
	for _, rest := range expandGlobstar(p[i+3:]) {
		out = append(out, p[:i+3]+rest, p[:i]+rest)
	}
	return out
}
