package loader

import (
	"github.com/rshade/recordlist/internal/store"
)

// QueryIdentity is the sort key that defines which pages belong together.
// The zero value means no sort. Two identities are equal iff both fields match.
type QueryIdentity struct {
	Column string
	Order  store.SortOrder
}

// NoSort is the identity used on mount.
//
//nolint:gochecknoglobals // Zero identity, named for readability.
var NoSort = QueryIdentity{}

// IsSorted reports whether the identity carries a sort column.
func (q QueryIdentity) IsSorted() bool {
	return q.Column != ""
}

func (q QueryIdentity) String() string {
	if !q.IsSorted() {
		return "none"
	}
	return q.Column + ":" + string(q.Order)
}

// ListParams builds the store request for one page under this identity.
func (q QueryIdentity) ListParams(page, pageSize int) store.ListParams {
	return store.ListParams{
		Page:       page,
		PageSize:   pageSize,
		SortColumn: q.Column,
		SortOrder:  q.Order,
	}
}
