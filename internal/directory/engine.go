// Package directory holds the pure search, filter and pagination logic for
// the account listing. No I/O happens here; the repository fetches, this
// package slices.
package directory

import (
	"strings"

	"github.com/yhlin/memberdir/internal/models"
)

// PageSize is the fixed page size of the directory listing.
const PageSize = 10

// MaxVisiblePages is the width of the page-button window.
const MaxVisiblePages = 5

// Filter returns the accounts matching the query: case-insensitive substring
// match on the account handle OR the display name. An empty query returns
// the input slice unchanged. Phone and address are never matched.
func Filter(all []*models.Account, query string) []*models.Account {
	if query == "" {
		return all
	}

	needle := strings.ToLower(query)
	filtered := make([]*models.Account, 0, len(all))
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.Account), needle) ||
			strings.Contains(strings.ToLower(a.DisplayName), needle) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// TotalPages reports the page count for n items: at least 1, so an empty
// result still renders a single empty page.
func TotalPages(n, pageSize int) int {
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// PageSlice returns the items of the given 1-based page, clamped to the
// available range. An empty slice is a valid empty-state, not an error.
func PageSlice(filtered []*models.Account, page, pageSize int) []*models.Account {
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(filtered) {
		return []*models.Account{}
	}

	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// Window is the range of page buttons to render around the current page.
type Window struct {
	Pages            []int
	LeadingEllipsis  bool // window does not touch page 1
	TrailingEllipsis bool // window does not touch the last page
}

// PageWindow centers a window of at most maxVisible page numbers around
// currentPage, clamped to [1, totalPages]. When the centered window would
// overflow one bound it is shifted fully to the other.
func PageWindow(currentPage, totalPages, maxVisible int) Window {
	if totalPages < 1 {
		totalPages = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	startPage := currentPage - maxVisible/2
	endPage := startPage + maxVisible - 1

	if startPage < 1 {
		startPage = 1
		endPage = startPage + maxVisible - 1
	}
	if endPage > totalPages {
		endPage = totalPages
		startPage = endPage - maxVisible + 1
		if startPage < 1 {
			startPage = 1
		}
	}

	pages := make([]int, 0, endPage-startPage+1)
	for p := startPage; p <= endPage; p++ {
		pages = append(pages, p)
	}

	return Window{
		Pages:            pages,
		LeadingEllipsis:  startPage > 1,
		TrailingEllipsis: endPage < totalPages,
	}
}
