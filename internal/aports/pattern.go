package aports

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
)

// PatternValidator rejects dependency globs broad enough to select most of
// the tree by accident.
type PatternValidator struct{}

// ValidationError represents a pattern validation failure.
type ValidationError struct {
	Pattern string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid pattern '%s': %s", e.Pattern, e.Reason)
}

// NewPatternValidator creates a new PatternValidator instance.
func NewPatternValidator() *PatternValidator {
	return &PatternValidator{}
}

// Validate checks if a dependency pattern is safe to use.
//
// Validation rules:
//   - Patterns without wildcards are always valid (exact match)
//   - The pattern must be valid doublestar syntax
//   - Patterns with wildcards need at least 3 characters before the first one
//   - A prefix ending in '-' or '_' needs a token of at least 2 characters
//
// Valid: "qt6-*", "py3-*", "lib*", "so:libssl.so.*", "zlib"
// Invalid: "*", "q*", "py*", "a-*", "{a,b}*"
func (v *PatternValidator) Validate(pattern string) error {
	if pattern == "" {
		return &ValidationError{Pattern: pattern, Reason: "pattern cannot be empty"}
	}

	if !doublestar.ValidatePattern(pattern) {
		return &ValidationError{Pattern: pattern, Reason: "malformed glob syntax"}
	}

	pos := findFirstWildcard(pattern)
	if pos == -1 {
		return nil
	}

	if pos == 0 {
		return &ValidationError{
			Pattern: pattern,
			Reason:  "pattern is too broad; must specify at least one complete token before wildcards",
		}
	}

	if pos < 3 {
		return &ValidationError{
			Pattern: pattern,
			Reason:  fmt.Sprintf("pattern must have at least 3 characters before wildcards (found %d)", pos),
		}
	}

	prefix := pattern[:pos]
	if strings.HasSuffix(prefix, "-") || strings.HasSuffix(prefix, "_") {
		if len(prefix)-1 < 2 {
			return &ValidationError{
				Pattern: pattern,
				Reason:  "pattern must have at least one complete token (separated by '-' or '_') before wildcards",
			}
		}
	}

	return nil
}

// findFirstWildcard returns the position of the first glob meta character,
// or -1 when the pattern is literal.
func findFirstWildcard(pattern string) int {
	return strings.IndexAny(pattern, "*?[{\\")
}

// DepMatcher matches dependency names against a validated glob
type DepMatcher struct {
	pattern string
	literal bool
}

// NewDepMatcher validates pattern and returns a matcher for it
func NewDepMatcher(pattern string) (*DepMatcher, error) {
	if err := NewPatternValidator().Validate(pattern); err != nil {
		return nil, err
	}
	return &DepMatcher{
		pattern: pattern,
		literal: findFirstWildcard(pattern) == -1,
	}, nil
}

// Pattern returns the glob the matcher was built from
func (m *DepMatcher) Pattern() string {
	return m.pattern
}

// Match reports whether a dependency name matches the pattern
func (m *DepMatcher) Match(name string) bool {
	if m.literal {
		return name == m.pattern
	}
	ok, err := doublestar.Match(m.pattern, name)
	return err == nil && ok
}

// MatchTokens reports whether any dependency token refers to a matching
// package. Conflict tokens ("!foo") never match.
func (m *DepMatcher) MatchTokens(tokens []string) bool {
	for _, tok := range tokens {
		name, ok := apkbuild.DependencyName(tok)
		if ok && m.Match(name) {
			return true
		}
	}
	return false
}
