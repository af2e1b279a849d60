// Package types contains common types used across the application
package types

// Pagination bounds for the ranked listing.
const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// PageRequest asks for one page of the current-edition ranking.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize corrects out-of-range values instead of rejecting them: a page
// below 1 becomes 1 and a page size outside 1..MaxPageSize becomes
// DefaultPageSize.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
