package pagination

// PaginationMeta contains metadata about one listed page.
//
//nolint:revive // PaginationMeta is the canonical name for this exported type.
type PaginationMeta struct {
	CurrentPage int    `json:"current_page"          yaml:"current_page"`
	PageSize    int    `json:"page_size"             yaml:"page_size"`
	TotalPages  int    `json:"total_pages"           yaml:"total_pages"`
	TotalItems  int    `json:"total_items"           yaml:"total_items"`
	HasPrevious bool   `json:"has_previous"          yaml:"has_previous"`
	HasNext     bool   `json:"has_next"              yaml:"has_next"`
	SortField   string `json:"sort_field,omitempty"  yaml:"sort_field,omitempty"`
	SortOrder   string `json:"sort_order,omitempty"  yaml:"sort_order,omitempty"`
	Approximate bool   `json:"approximate,omitempty" yaml:"approximate,omitempty"`
}

// NewPaginationMeta creates pagination metadata from the flags and the
// total count the store reported. approximate marks a degraded total.
func NewPaginationMeta(params PaginationParams, totalCount int, approximate bool) PaginationMeta {
	totalPages := params.CalculateTotalPages(totalCount)
	meta := PaginationMeta{
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		HasPrevious: params.Page > 1,
		HasNext:     params.Page < totalPages,
		Approximate: approximate,
	}
	if spec, err := ParseSortExpression(params.Sort); err == nil && params.Sort != "" {
		meta.SortField = spec.Field
		meta.SortOrder = string(spec.Order)
	}
	return meta
}
