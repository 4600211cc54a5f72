package shared

import (
	"math"
	"net/url"
	"strconv"
)

// MaxPerPage caps the page size a client may request.
const MaxPerPage = 200

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PaginationFromQuery reads page and per_page. Missing values fall back to
// the defaults of NewPagination; malformed ones are rejected.
func PaginationFromQuery(q url.Values, total int) (Pagination, error) {
	page, err := positiveQueryInt(q, "page")
	if err != nil {
		return Pagination{}, err
	}
	perPage, err := positiveQueryInt(q, "per_page")
	if err != nil {
		return Pagination{}, err
	}
	return NewPagination(page, perPage, total), nil
}

// Bounds returns the slice range of the current page.
func (p Pagination) Bounds() (start, end int) {
	start = (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

func positiveQueryInt(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, Validation(name + " must be a positive integer.")
	}
	return v, nil
}
