// Package query filters and orders venue records for a filter/sort selection.
package query

import "strings"

// SortKey names a result ordering.
type SortKey string

const (
	SortNone   SortKey = ""
	SortName   SortKey = "name"
	SortRating SortKey = "rating"
	SortPrice  SortKey = "priceRange"
)

// SortKeys lists the supported orderings.
var SortKeys = []SortKey{SortName, SortRating, SortPrice}

// ParseSortKey resolves s; "price" is accepted as an alias of priceRange.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortName, true
	case "rating":
		return SortRating, true
	case "pricerange", "price_range", "price":
		return SortPrice, true
	}
	return SortNone, false
}

// Selection is the complete set of active query parameters. Values are kept
// as the caller supplied them; an empty field means "no filter". Values that
// do not resolve to a known enum narrow the result to nothing.
type Selection struct {
	Type       string `json:"type,omitempty"`
	Cuisine    string `json:"cuisine,omitempty"`
	District   string `json:"district,omitempty"`
	PriceRange string `json:"priceRange,omitempty"`
	SearchTerm string `json:"searchTerm,omitempty"`
	SortBy     string `json:"sortBy,omitempty"`
}

// IsZero reports whether no filter or sort is active.
func (s Selection) IsZero() bool {
	return strings.TrimSpace(s.Type) == "" &&
		strings.TrimSpace(s.Cuisine) == "" &&
		strings.TrimSpace(s.District) == "" &&
		strings.TrimSpace(s.PriceRange) == "" &&
		strings.TrimSpace(s.SearchTerm) == "" &&
		strings.TrimSpace(s.SortBy) == ""
}
