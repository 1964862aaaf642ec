package common

import (
	"net/http"
	"strconv"
)

// Pagination describes the window a list response covers.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination reads the page and limit query parameters, falling back
// to page 1 and the caller's default page size on anything unusable.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	q := r.URL.Query()
	page, perPage = 1, defaultPerPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		perPage = v
	}
	return page, perPage
}

// PageBounds converts a page/perPage pair into slice bounds over an
// in-memory list of total elements. Pages past the end yield an empty
// window rather than an error.
func PageBounds(page, perPage, total int) (lo, hi int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	lo = (page - 1) * perPage
	if lo > total {
		return total, total
	}
	hi = lo + perPage
	if hi > total {
		hi = total
	}
	return lo, hi
}
