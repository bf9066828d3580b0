// Package feed composes ordered, paginated post feeds: the selection rules
// for the four feed kinds and the tolerant page-number paginator they share.
package feed

import (
	"strconv"

	"quill/internal/models"
)

// Page is one slice of an ordered feed.
type Page struct {
	Items      []*models.Post `json:"items"`
	Number     int            `json:"number"`
	TotalPages int            `json:"total_pages"`
	TotalItems int64          `json:"total_items"`
	HasNext    bool           `json:"has_next"`
	HasPrev    bool           `json:"has_prev"`
}

// Paginator slices an ordered sequence into fixed-size pages with tolerant
// page-number semantics: page numbers below 1 become 1, numbers past the
// last page clamp to the last page, and an empty sequence still has exactly
// one (empty) page so "current page" stays well-defined.
type Paginator struct {
	pageSize int
}

// NewPaginator returns a Paginator with the given page size.
// A non-positive size falls back to 10.
func NewPaginator(pageSize int) Paginator {
	if pageSize <= 0 {
		pageSize = 10
	}
	return Paginator{pageSize: pageSize}
}

// PageSize returns the configured page size.
func (p Paginator) PageSize() int {
	return p.pageSize
}

// TotalPages computes the page count for total items: max(1, ceil(total/size)).
func (p Paginator) TotalPages(total int64) int {
	if total <= 0 {
		return 1
	}
	pages := int((total + int64(p.pageSize) - 1) / int64(p.pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Clamp normalizes a requested page number against the page count.
func (p Paginator) Clamp(requested, totalPages int) int {
	if requested < 1 {
		return 1
	}
	if requested > totalPages {
		return totalPages
	}
	return requested
}

// Offset returns the item offset for a (already clamped) page number.
func (p Paginator) Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.pageSize
}

// page assembles Page metadata for the clamped page number.
func (p Paginator) page(items []*models.Post, number, totalPages int, total int64) *Page {
	if items == nil {
		items = []*models.Post{}
	}
	return &Page{
		Items:      items,
		Number:     number,
		TotalPages: totalPages,
		TotalItems: total,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}

// ParsePageParam interprets a raw ?page= query value. Anything non-numeric
// or below 1 is treated as page 1; clamping against the last page happens
// later, once the total is known.
func ParsePageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
