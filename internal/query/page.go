// Package query builds the filtered, sorted and paginated SQL used by the
// list and statistics endpoints. It produces WHERE and ORDER BY fragments
// with positional arguments; executing them is the store's job.
package query

import (
	"math"
	"net/url"
	"strconv"
)

// MaxPageSize caps how many rows a single page may return.
const MaxPageSize = 100

// MaxPageNumber keeps Offset from overflowing. Pages past the last row are
// simply empty.
const MaxPageNumber = math.MaxInt32 / MaxPageSize

// Default page sizes per entity.
const (
	PostPageSize     = 10
	CategoryPageSize = 20
	MediaPageSize    = 20
)

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes a page request: numbers below 1 become 1, numbers
// above MaxPageNumber are capped, sizes below 1 take defaultSize and sizes
// above MaxPageSize are capped.
func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// ParsePage reads "page" and "limit" from query parameters. Values that
// don't parse fall back to the defaults.
func ParsePage(values url.Values, defaultSize int) Page {
	number, _ := strconv.Atoi(values.Get("page"))
	size, _ := strconv.Atoi(values.Get("limit"))
	return NewPage(number, size, defaultSize)
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of rows on this page.
func (p Page) Limit() int {
	return p.Size
}

// Pagination is the page metadata returned with every list.
type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
	Limit   int `json:"limit"`
}

// Paginate builds response metadata for a result with total matching rows.
func (p Page) Paginate(total int) Pagination {
	return Pagination{
		Current: p.Number,
		Pages:   Pages(total, p.Size),
		Total:   total,
		Limit:   p.Size,
	}
}

// Pages is ceil(total / size).
func Pages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Result is one page of items plus the full matching count.
type Result[T any] struct {
	Items []T
	Total int
}
