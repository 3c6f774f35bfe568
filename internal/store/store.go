package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rshade/recordlist/internal/record"
)

// SortOrder is the direction of a server-side sort.
type SortOrder string

// Sort orders. The zero value means unsorted.
const (
	OrderNone SortOrder = ""
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Page size limits accepted by the stores.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Common validation errors.
var (
	ErrInvalidPage      = errors.New("page must be >= 1")
	ErrInvalidPageSize  = fmt.Errorf("page size must be between 1 and %d", MaxPageSize)
	ErrInvalidSortOrder = errors.New("sort order must be 'asc' or 'desc'")
	ErrSortWithoutOrder = errors.New("sort column requires a sort order")
)

// ParseSortOrder parses "asc"/"desc" (case-insensitive). Empty input is OrderNone.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return OrderNone, nil
	case string(OrderAsc):
		return OrderAsc, nil
	case string(OrderDesc):
		return OrderDesc, nil
	default:
		return OrderNone, fmt.Errorf("%w: got %q", ErrInvalidSortOrder, s)
	}
}

// ListParams selects one page of the collection.
type ListParams struct {
	// Page is the 1-based page number.
	Page int
	// PageSize is the number of records per page.
	PageSize int
	// SortColumn is the record column to sort by; empty means store order.
	SortColumn string
	// SortOrder is required when SortColumn is set.
	SortOrder SortOrder
}

// Validate checks bounds and sort consistency.
func (p ListParams) Validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.SortColumn == "" {
		return nil
	}
	if !record.IsColumn(p.SortColumn) {
		return fmt.Errorf("%w: %q", record.ErrUnknownColumn, p.SortColumn)
	}
	switch p.SortOrder {
	case OrderAsc, OrderDesc:
		return nil
	case OrderNone:
		return ErrSortWithoutOrder
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidSortOrder, p.SortOrder)
	}
}

// Offset returns the number of records preceding the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListResult is one page of records plus the collection size at fetch time.
type ListResult struct {
	Records    []record.Record
	TotalCount int
}

// Store is the Record Store boundary.
type Store interface {
	// ListRecords returns one page of the collection in server order.
	ListRecords(ctx context.Context, params ListParams) (*ListResult, error)
	// CreateRecord appends a record and returns it as stored.
	CreateRecord(ctx context.Context, payload record.NewRecord) (*record.Record, error)
}
