package engine

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/guisu-dotfiles/guisu/pkg/utility"
)

// IgnorePredicate reports whether a source-relative path should be skipped
// by the Source Reader. This is the shape of the "ignore_predicate" input
// spec.md §6 describes; NewIgnorer below builds one from a pattern list so
// that callers don't have to hand-write the matching logic, but a caller may
// also supply any func of this shape directly.
type IgnorePredicate func(path string, directory bool) bool

// ignorePattern is a single parsed ignore pattern: negation, directory-only,
// and leaf-matching semantics adapted directly from the three-way sync
// engine's own ignore parser, backed by the same doublestar matcher.
type ignorePattern struct {
	negated       bool
	directoryOnly bool
	matchLeaf     bool
	pattern       string
}

// newIgnorePattern validates and parses a single ignore specification.
func newIgnorePattern(pattern string) (*ignorePattern, error) {
	if pattern == "" || pattern == "!" {
		return nil, fmt.Errorf("empty pattern")
	} else if pattern == "/" || pattern == "!/" {
		return nil, fmt.Errorf("root pattern")
	} else if pattern == "//" || pattern == "!//" {
		return nil, fmt.Errorf("root directory pattern")
	}

	negated := false
	if pattern[0] == '!' {
		negated = true
		pattern = pattern[1:]
	}

	absolute := false
	if pattern[0] == '/' {
		absolute = true
		pattern = pattern[1:]
	}

	directoryOnly := false
	if pattern[len(pattern)-1] == '/' {
		directoryOnly = true
		pattern = pattern[:len(pattern)-1]
	}

	containsSlash := strings.IndexByte(pattern, '/') >= 0

	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return nil, fmt.Errorf("unable to validate pattern: %w", err)
	}

	return &ignorePattern{
		negated:       negated,
		directoryOnly: directoryOnly,
		matchLeaf:     !absolute && !containsSlash,
		pattern:       pattern,
	}, nil
}

// matches reports whether the pattern matches path (and, if so, whether the
// match is a negation).
func (i *ignorePattern) matches(path string, directory bool) (bool, bool) {
	if i.directoryOnly && !directory {
		return false, false
	}
	if match, _ := doublestar.Match(i.pattern, path); match {
		return true, i.negated
	}
	if i.matchLeaf && path != "" {
		if match, _ := doublestar.Match(i.pattern, base(path)); match {
			return true, i.negated
		}
	}
	return false, false
}

// ValidIgnorePattern reports whether pattern is a syntactically valid ignore
// specification.
func ValidIgnorePattern(pattern string) bool {
	_, err := newIgnorePattern(pattern)
	return err == nil
}

// NewIgnorer compiles an ordered list of ignore patterns (later patterns
// take precedence, and a leading "!" negates an earlier match) into an
// IgnorePredicate.
func NewIgnorer(patterns []string) (IgnorePredicate, error) {
	// Copy defensively: the predicate closes over the compiled patterns for
	// the lifetime of a reconciliation pass, and must not be affected by
	// the caller mutating the slice it passed in afterward.
	patterns = utility.CopyStringSlice(patterns)

	compiled := make([]*ignorePattern, len(patterns))
	for i, p := range patterns {
		ip, err := newIgnorePattern(p)
		if err != nil {
			return nil, fmt.Errorf("unable to parse pattern %q: %w", p, err)
		}
		compiled[i] = ip
	}

	return func(path string, directory bool) bool {
		ignored := false
		for _, p := range compiled {
			if match, negated := p.matches(path, directory); match {
				ignored = !negated
			}
		}
		return ignored
	}, nil
}
