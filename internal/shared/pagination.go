package shared

import (
	"math"
	"net/http"
	"strconv"
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ListQuery carries the standard list page parameters.
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
}

// ParseListQuery extracts pagination and search parameters from the request.
func ParseListQuery(r *http.Request) ListQuery {
	q := ListQuery{Page: 1, PerPage: 20}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("perPage")); err == nil && v > 0 && v <= 1000 {
		q.PerPage = v
	}
	q.Search = r.URL.Query().Get("search")
	return q
}

// Offset returns the row offset for the current page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}
