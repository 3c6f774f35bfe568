package pagination

import (
	"errors"
	"fmt"

	"github.com/rshade/recordlist/internal/store"
)

// Defaults and limits of the page flags.
const (
	DefaultPage     = 1
	MinPage         = 1
	MinPageSize     = 1
	MaxPageSize     = store.MaxPageSize
	DefaultPageSize = store.DefaultPageSize
)

// Common validation errors.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = fmt.Errorf("page-size must be between %d and %d", MinPageSize, MaxPageSize)
)

// PaginationParams holds the list command's paging and sort flags.
//
//nolint:revive // PaginationParams is the canonical name for this exported type.
type PaginationParams struct {
	// Page is the 1-based page number.
	Page int

	// PageSize is the number of records per page.
	PageSize int

	// Sort is the raw --sort expression, "field" or "field:order".
	Sort string
}

// NewPaginationParams creates params for the first page of pageSize records.
func NewPaginationParams(pageSize int) *PaginationParams {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PaginationParams{
		Page:     DefaultPage,
		PageSize: pageSize,
	}
}

// Validate checks bounds and the sort expression (value receiver).
func (p PaginationParams) Validate() error {
	if p.Page < MinPage {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, p.Page)
	}
	if p.PageSize < MinPageSize || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.Sort != "" {
		if _, err := ParseSortExpression(p.Sort); err != nil {
			return err
		}
	}
	return nil
}

// ListParams converts the flags into a store request.
func (p PaginationParams) ListParams() (store.ListParams, error) {
	if err := p.Validate(); err != nil {
		return store.ListParams{}, err
	}
	params := store.ListParams{Page: p.Page, PageSize: p.PageSize}
	if p.Sort != "" {
		spec, err := ParseSortExpression(p.Sort)
		if err != nil {
			return store.ListParams{}, err
		}
		params.SortColumn = spec.Field
		params.SortOrder = spec.Order
	}
	return params, nil
}

// Offset returns the number of records before the requested page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// CalculateTotalPages calculates the number of pages for totalResults.
func (p PaginationParams) CalculateTotalPages(totalResults int) int {
	if totalResults <= 0 || p.PageSize <= 0 {
		return 0
	}
	pages := totalResults / p.PageSize
	if totalResults%p.PageSize > 0 {
		pages++
	}
	return pages
}
