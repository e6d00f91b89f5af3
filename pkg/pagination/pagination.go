package pagination

// PaginationParams holds page-based pagination input.
type PaginationParams struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Validate clamps the parameters to sane bounds.
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 15
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

// Offset returns the row offset for the current page.
func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination describes the page window of a result set.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination builds pagination metadata for a total row count.
func NewPagination(page, perPage int, total int64) *Pagination {
	if perPage < 1 {
		perPage = 15
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PaginatedResult wraps a page of items with its pagination metadata.
type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// NewPaginatedResult builds a paginated result.
func NewPaginatedResult[T any](items []T, pagination *Pagination) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{Items: items, Pagination: pagination}
}
