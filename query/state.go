// Package query holds the canonical list-query state and the pure
// transition rules that keep its parameters consistent.
package query

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultPageSize is the page size of a freshly created state.
const DefaultPageSize = 10

// SortMode selects the ordering requested from the backend.
type SortMode string

const (
	SortRelevant     SortMode = "relevant"
	SortPriceLowHigh SortMode = "low-high"
	SortPriceHighLow SortMode = "high-low"
)

// SortModes lists the supported modes in display order.
var SortModes = []SortMode{SortRelevant, SortPriceLowHigh, SortPriceHighLow}

// ParseSortMode maps a wire value to a SortMode.
func ParseSortMode(value string) (SortMode, error) {
	mode := SortMode(strings.ToLower(strings.TrimSpace(value)))
	if !mode.Valid() {
		return "", fmt.Errorf("unknown sort mode %q", value)
	}
	return mode, nil
}

// Valid reports whether m is one of the supported modes.
func (m SortMode) Valid() bool {
	return slices.Contains(SortModes, m)
}

// Label is the human readable name used by the sort selector.
func (m SortMode) Label() string {
	switch m {
	case SortRelevant:
		return "Sort by: Relevant"
	case SortPriceLowHigh:
		return "Sort by: Low-High"
	case SortPriceHighLow:
		return "Sort by: High-Low"
	default:
		return string(m)
	}
}

// TagSet is an immutable set of filter tags. The zero value is the empty set.
// Members are kept sorted so equal sets compare and serialize identically.
type TagSet struct {
	tags []string
}

// NewTagSet builds a set from tags, dropping blanks and duplicates.
func NewTagSet(tags ...string) TagSet {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return TagSet{tags: slices.Compact(out)}
}

// Len returns the number of tags.
func (s TagSet) Len() int {
	return len(s.tags)
}

// Contains reports membership.
func (s TagSet) Contains(tag string) bool {
	_, found := slices.BinarySearch(s.tags, tag)
	return found
}

// Toggle returns a new set with tag added when absent or removed when present.
// The receiver is never modified.
func (s TagSet) Toggle(tag string) TagSet {
	idx, found := slices.BinarySearch(s.tags, tag)
	next := make([]string, 0, len(s.tags)+1)
	next = append(next, s.tags[:idx]...)
	if found {
		next = append(next, s.tags[idx+1:]...)
	} else {
		next = append(next, tag)
		next = append(next, s.tags[idx:]...)
	}
	return TagSet{tags: next}
}

// Tags returns a copy of the members in sorted order.
func (s TagSet) Tags() []string {
	return slices.Clone(s.tags)
}

// Equal compares two sets by membership.
func (s TagSet) Equal(other TagSet) bool {
	return slices.Equal(s.tags, other.tags)
}

// Join concatenates the members with sep.
func (s TagSet) Join(sep string) string {
	return strings.Join(s.tags, sep)
}

func (s TagSet) String() string {
	return "{" + s.Join(",") + "}"
}

// State is the snapshot of filters, sort, search and pagination that drives
// the next fetch. It is a value: transitions build a new State.
type State struct {
	Categories    TagSet
	SubCategories TagSet
	Sort          SortMode
	Search        string
	Page          int
	PageSize      int
}

// Default returns the initial state: first page, default page size,
// relevant ordering, no filters and no search.
func Default() State {
	return NewState(DefaultPageSize)
}

// NewState returns the initial state with the given page size.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		Sort:     SortRelevant,
		Page:     1,
		PageSize: pageSize,
	}
}

// Equal reports structural equality. Structurally equal states must never
// cause two requests.
func (s State) Equal(other State) bool {
	return s.Page == other.Page &&
		s.PageSize == other.PageSize &&
		s.Sort == other.Sort &&
		s.Search == other.Search &&
		s.Categories.Equal(other.Categories) &&
		s.SubCategories.Equal(other.SubCategories)
}

// SameFilters reports whether both states select the same result set,
// ignoring only the page number.
func (s State) SameFilters(other State) bool {
	withPage := other
	withPage.Page = s.Page
	return s.Equal(withPage)
}

// Fingerprint is the canonical encoded request for s.
func (s State) Fingerprint() string {
	return Serialize(s).Encode()
}

func (s State) String() string {
	return s.Fingerprint()
}
