package loader

import (
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
)

// SortController holds the single active sort.
type SortController struct {
	current QueryIdentity
}

// NewSortController starts unsorted.
func NewSortController() *SortController {
	return &SortController{}
}

// Identity returns the current query identity.
func (s *SortController) Identity() QueryIdentity {
	return s.current
}

// Toggle advances column through unsorted -> asc -> desc -> unsorted. Toggling
// a different column than the sorted one starts that column at asc.
func (s *SortController) Toggle(column string) (QueryIdentity, error) {
	if _, err := record.LookupColumn(column); err != nil {
		return s.current, err
	}

	switch {
	case s.current.Column != column:
		s.current = QueryIdentity{Column: column, Order: store.OrderAsc}
	case s.current.Order == store.OrderAsc:
		s.current = QueryIdentity{Column: column, Order: store.OrderDesc}
	default:
		s.current = NoSort
	}
	return s.current, nil
}
