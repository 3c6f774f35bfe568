package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
)

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// Sort expression errors.
var (
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'age:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// SortSpec is a parsed --sort expression.
type SortSpec struct {
	Field string
	Order store.SortOrder
}

// ParseSortExpression parses "field" or "field:order". The order defaults to
// ascending and field must be a record column.
func ParseSortExpression(expr string) (SortSpec, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return SortSpec{}, ErrEmptySortField
	}

	parts := strings.Split(expr, ":")
	if len(parts) > sortPartsMax {
		return SortSpec{}, fmt.Errorf("%w: %q", ErrInvalidSortFormat, expr)
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return SortSpec{}, ErrEmptySortField
	}
	if !record.IsColumn(field) {
		return SortSpec{}, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(ValidSortFields(), ", "))
	}

	order := store.OrderAsc
	if len(parts) == sortPartsMax {
		parsed, err := store.ParseSortOrder(parts[1])
		if err != nil {
			return SortSpec{}, err
		}
		if parsed != store.OrderNone {
			order = parsed
		}
	}

	return SortSpec{Field: field, Order: order}, nil
}

// ValidSortFields returns the sortable columns in display order.
func ValidSortFields() []string {
	return record.ColumnKeys()
}
