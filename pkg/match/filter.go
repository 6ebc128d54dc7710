// Package match provides glob filtering for object listing pages using
// doublestar semantics.
//
// The console's list view lets an operator narrow a page of keys with a
// pattern like "dev/**/*.png" without changing the listing prefix. The
// filter is applied to pages after they come back from the store; the
// backend never sees the pattern.
package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stowgate/stowgate/pkg/store"
)

// Errors returned by Filter construction.
var (
	// ErrInvalidPattern is returned when a pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// Filter evaluates a glob pattern against object keys.
// A Filter is safe for concurrent use after creation.
type Filter struct {
	pattern string
}

// NewFilter compiles pattern into a Filter. The pattern uses doublestar
// semantics: '*' matches within a segment, '**' crosses '/' boundaries.
func NewFilter(pattern string) (*Filter, error) {
	if pattern == "" {
		return nil, ErrInvalidPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, ErrInvalidPattern
	}
	return &Filter{pattern: pattern}, nil
}

// Pattern returns the raw pattern the filter was built from.
func (f *Filter) Pattern() string {
	return f.pattern
}

// Match reports whether key matches the pattern. Keys are matched as-is:
// cloud storage keys are opaque strings where any character is valid.
func (f *Filter) Match(key string) bool {
	matched, err := doublestar.Match(f.pattern, key)
	if err != nil {
		// Pattern was validated at construction time, so this shouldn't happen
		return false
	}
	return matched
}

// Apply returns a copy of page with Objects reduced to the keys matching
// the filter. Pagination fields are preserved: the continuation token
// still resumes from the unfiltered backend position, and KeyCount still
// reports the backend's page size, so clients can keep paging while a
// filter is active.
func (f *Filter) Apply(page *store.ListResult) *store.ListResult {
	if page == nil {
		return nil
	}

	filtered := make([]store.ObjectSummary, 0, len(page.Objects))
	for _, obj := range page.Objects {
		if f.Match(obj.Key) {
			filtered = append(filtered, obj)
		}
	}

	out := *page
	out.Objects = filtered
	return &out
}
