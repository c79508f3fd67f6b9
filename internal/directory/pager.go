package directory

import "github.com/noah-isme/dcu-portal-api/internal/models"

// DefaultPageSize is the number of club cards per page.
const DefaultPageSize = 12

// Page is one window over a filtered list.
type Page struct {
	Items      []models.Club
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// TotalPages returns ceil(count/pageSize) but never less than 1, so an empty result still has a page.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage constrains requested into [1, totalPages].
func ClampPage(requested, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if requested < 1 {
		return 1
	}
	if requested > totalPages {
		return totalPages
	}
	return requested
}

// Paginate slices filtered for the requested page. Out-of-range requests are clamped, never rejected.
func Paginate(filtered []models.Club, pageSize, requested int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(filtered), pageSize)
	page := ClampPage(requested, total)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:      filtered[start:end:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: len(filtered),
		TotalPages: total,
		HasPrev:    page > 1,
		HasNext:    page < total,
	}
}

// PageNumbers returns the page buttons to render: the first and last page plus every page within
// one of current, ascending and without duplicates. Gaps are left to the renderer.
func PageNumbers(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	current = ClampPage(current, totalPages)

	pages := []int{1}
	for p := current - 1; p <= current+1; p++ {
		if p > 1 && p < totalPages {
			pages = append(pages, p)
		}
	}
	if totalPages > 1 {
		pages = append(pages, totalPages)
	}
	return pages
}

// Pagination converts the page into response metadata.
func (p Page) Pagination() models.Pagination {
	return models.Pagination{
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalCount:  p.TotalCount,
		TotalPages:  p.TotalPages,
		HasPrev:     p.HasPrev,
		HasNext:     p.HasNext,
		PageNumbers: PageNumbers(p.Page, p.TotalPages),
	}
}

// Empty reports whether the filtered list had no clubs at all.
func (p Page) Empty() bool { return p.TotalCount == 0 }
