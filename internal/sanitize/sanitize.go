// Package sanitize validates and normalizes raw query parameters against
// strict character-class allowlists. Unsafe input is rejected, never coerced.
// All functions are pure.
package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is used when the pageSize parameter is absent or invalid.
	DefaultPageSize = 10
	// MaxPageSize caps a single page so one request cannot demand unbounded work.
	MaxPageSize = 100
)

var (
	safeSearchPattern = regexp.MustCompile(`^[a-z0-9\s,.'()-]+$`)
	safeRegionPattern = regexp.MustCompile(`^[a-z\s-]+$`)
	safeTopicPattern  = regexp.MustCompile(`^[a-z]+$`)

	// Characters significant to the downstream search syntax.
	searchOperatorPattern = regexp.MustCompile(`[+\-&|!(){}\[\]^"~*?:\\]`)
	whitespaceRunPattern  = regexp.MustCompile(`\s+`)
)

// SearchQuery trims, lower-cases and validates a search query. Validation
// fails on the first character outside the allowlist. Search-syntax operator
// characters are then replaced with a space and whitespace runs collapsed.
// A result that is empty after sanitation is reported as ok but empty,
// meaning the filter is absent.
func SearchQuery(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", true
	}
	if !safeSearchPattern.MatchString(s) {
		return "", false
	}
	s = searchOperatorPattern.ReplaceAllString(s, " ")
	s = whitespaceRunPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s), true
}

// Region trims, lower-cases and validates a region/state name. Only lowercase
// letters, spaces and hyphens are accepted.
func Region(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", true
	}
	if !safeRegionPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// Topic trims, lower-cases and validates a topic. Only letters are accepted;
// enum membership is the caller's concern.
func Topic(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", true
	}
	if !safeTopicPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// Page parses a page number. The function is total: non-numeric, zero or
// negative input maps to 1.
func Page(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PageSize parses a page size. Total like Page: invalid input maps to the
// default, oversized input is clamped.
func PageSize(raw string) int {
	return PageSizeWith(raw, DefaultPageSize)
}

// PageSizeWith is PageSize with a caller-supplied default. A default outside
// [1, MaxPageSize] falls back to DefaultPageSize, so the function stays total
// regardless of configuration.
func PageSizeWith(raw string, def int) int {
	if def < 1 || def > MaxPageSize {
		def = DefaultPageSize
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
