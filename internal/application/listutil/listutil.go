package listutil

import (
	"net/url"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // column name
	Dir  string // "asc" or "desc"
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string            // free-text search query
	Filters map[string]string // exact-match filters (e.g. gate=waiver_required)
}

// PageInfo carries pagination metadata returned alongside a page of rows.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListParams combines all list view parameters.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 50

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100, 200, 500}

// ParsePageParams extracts page and per_page from URL query values.
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !contains(PerPageOptions, perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams extracts sort and dir from URL query values.
// POST: Sort is empty or one of allowedColumns; Dir is always "asc" or "desc"
func ParseSortParams(q url.Values, allowedColumns []string) SortParams {
	sort := q.Get("sort")
	dir := q.Get("dir")
	if !contains(allowedColumns, sort) {
		sort = ""
	}
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}
	return SortParams{Sort: sort, Dir: dir}
}

// ParseFilterParams extracts search and named filters from URL query values.
// POST: returns FilterParams with only recognised keys
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{Search: q.Get("q"), Filters: make(map[string]string)}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// ParseListParams parses all list parameters from URL query values.
func ParseListParams(q url.Values, allowedSortCols []string, filterKeys []string) ListParams {
	return ListParams{
		PageParams:   ParsePageParams(q),
		SortParams:   ParseSortParams(q, allowedSortCols),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// NewPageInfo computes pagination metadata.
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paginate slices rows to the requested page.
// POST: returned slice is a subslice of rows; never nil
func Paginate[T any](rows []T, params PageParams) ([]T, PageInfo) {
	info := NewPageInfo(params.Page, params.PerPage, len(rows))
	start := info.Offset()
	end := start + info.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	if start >= end {
		return []T{}, info
	}
	return rows[start:end], info
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
