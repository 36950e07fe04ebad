package util

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Pagination is the paging block returned by list endpoints.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// PageRequest is a parsed page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset is the number of rows to skip for this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePositiveInt parses s as a positive integer, falling back to def when it
// is missing or invalid and clamping to max when max > 0.
func ParsePositiveInt(s string, def, max int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		v = def
	}
	if max > 0 && v > max {
		v = max
	}
	return v
}

// ParsePageRequest reads page and limit query values.
func ParsePageRequest(page, limit string, maxLimit int) PageRequest {
	return PageRequest{
		Page:  ParsePositiveInt(page, DefaultPage, 0),
		Limit: ParsePositiveInt(limit, DefaultLimit, maxLimit),
	}
}

// NewPagination builds the paging block for total matching rows.
func NewPagination(req PageRequest, total int64) Pagination {
	pages := 0
	if req.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(req.Limit)))
	}
	return Pagination{
		CurrentPage:  req.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: req.Limit,
	}
}
