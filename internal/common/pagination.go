package common

import (
	"net/url"
	"strconv"
)

// PageParams are the validated page/limit values for a listing request.
type PageParams struct {
	Page  int
	Limit int
}

// ParsePageParams reads page and limit from the query string. Non-numeric,
// zero and negative values fall back to page 1 and the route's default
// limit; limits above 100 are treated the same way.
func ParsePageParams(q url.Values, defaultLimit int) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	return PageParams{Page: page, Limit: limit}
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the envelope attached to every paginated listing.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination computes the page envelope for total matching items:
// totalPages = ceil(total/limit), hasNextPage while pages remain beyond the
// current one, hasPrevPage for anything past page 1.
func NewPagination(p PageParams, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}
