// Package filter narrows the test battery with --only-test and --skip-test
// patterns.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bgricker/testreport/internal/config"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values. A pattern
// wrapped in slashes is a regular expression; anything else is a
// case-insensitive substring.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			re, err := regexp.Compile(raw[1 : len(raw)-1])
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// Tests keeps the specs selected by only and rejected by none of skip,
// preserving battery order. A spec matches when its name or its command does.
func Tests(specs []config.TestSpec, only, skip []Pattern) []config.TestSpec {
	if len(specs) == 0 {
		return nil
	}
	result := make([]config.TestSpec, 0, len(specs))
	for _, spec := range specs {
		if len(only) > 0 && !matchesSpec(spec, only) {
			continue
		}
		if len(skip) > 0 && matchesSpec(spec, skip) {
			continue
		}
		result = append(result, spec)
	}
	return result
}

// Apply compiles the raw patterns and filters specs in one step.
func Apply(specs []config.TestSpec, only, skip []string) ([]config.TestSpec, error) {
	onlyPatterns, err := Compile(only)
	if err != nil {
		return nil, fmt.Errorf("only-test: %w", err)
	}
	skipPatterns, err := Compile(skip)
	if err != nil {
		return nil, fmt.Errorf("skip-test: %w", err)
	}
	return Tests(specs, onlyPatterns, skipPatterns), nil
}

func matchesSpec(spec config.TestSpec, patterns []Pattern) bool {
	for _, pattern := range patterns {
		if pattern.Match(spec.Name) || pattern.Match(spec.Command) {
			return true
		}
	}
	return false
}
