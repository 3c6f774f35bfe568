package loader

import (
	"slices"

	"github.com/rshade/recordlist/internal/record"
)

// Page is one fetched batch of records tagged with the request it answers.
type Page struct {
	Identity   QueryIdentity
	Number     int
	Records    []record.Record
	TotalCount int
	// Approximate is set when the store did not report a usable total count
	// and TotalCount was derived from the records returned.
	Approximate bool
}

// LoadedSet holds the pages of exactly one query identity.
type LoadedSet struct {
	identity QueryIdentity
	pages    []Page
}

// Identity returns the identity the set is bound to.
func (s *LoadedSet) Identity() QueryIdentity {
	return s.identity
}

// Bind switches the set to id. Pages of any other identity are discarded.
func (s *LoadedSet) Bind(id QueryIdentity) {
	if s.identity != id {
		s.pages = nil
	}
	s.identity = id
}

// Clear drops every page and keeps the identity.
func (s *LoadedSet) Clear() {
	s.pages = nil
}

// Append adds the next page. Pages must match the bound identity, be unique
// and be contiguous from 1.
func (s *LoadedSet) Append(p Page) error {
	if p.Identity != s.identity {
		return &ConsistencyError{Kind: ErrIdentityMismatch, Identity: p.Identity, Page: p.Number, Expected: len(s.pages) + 1}
	}
	for _, existing := range s.pages {
		if existing.Number == p.Number {
			return &ConsistencyError{Kind: ErrDuplicatePage, Identity: p.Identity, Page: p.Number, Expected: len(s.pages) + 1}
		}
	}
	if p.Number != len(s.pages)+1 {
		return &ConsistencyError{Kind: ErrOutOfOrderPage, Identity: p.Identity, Page: p.Number, Expected: len(s.pages) + 1}
	}
	s.pages = append(s.pages, p)
	return nil
}

// Len returns the number of pages.
func (s *LoadedSet) Len() int {
	return len(s.pages)
}

// Pages returns a copy of the loaded pages.
func (s *LoadedSet) Pages() []Page {
	return slices.Clone(s.pages)
}

// RecordCount returns the number of loaded records.
func (s *LoadedSet) RecordCount() int {
	n := 0
	for _, p := range s.pages {
		n += len(p.Records)
	}
	return n
}

// Assemble flattens the pages of s in page number order. Records keep the
// order the store returned them in; nothing is re-sorted client side.
func Assemble(s *LoadedSet) []record.Record {
	if s == nil {
		return nil
	}
	pages := make([]Page, 0, len(s.pages))
	for _, p := range s.pages {
		if p.Identity == s.identity {
			pages = append(pages, p)
		}
	}
	slices.SortFunc(pages, func(a, b Page) int { return a.Number - b.Number })

	out := make([]record.Record, 0, s.RecordCount())
	for _, p := range pages {
		out = append(out, p.Records...)
	}
	return out
}
