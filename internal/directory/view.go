package directory

import (
	"github.com/yhlin/memberdir/internal/models"
)

// View is the directory listing state threaded through one search/paginate
// cycle: the full fetched list, the active query, the filtered result and
// the current page. It is an owned value, never shared between requests.
type View struct {
	All      []*models.Account
	Query    string
	Filtered []*models.Account
	Page     int
	PageSize int
}

// NewView builds a view over a freshly fetched account list. Page starts
// at 1 and the filter is applied immediately.
func NewView(all []*models.Account, query string, pageSize int) *View {
	v := &View{
		All:      all,
		PageSize: pageSize,
	}
	v.SetQuery(query)
	return v
}

// SetQuery re-filters and resets to the first page. Clearing the query
// restores the full list.
func (v *View) SetQuery(query string) {
	v.Query = query
	v.Filtered = Filter(v.All, query)
	v.Page = 1
}

// TotalPages reports the page count of the filtered result.
func (v *View) TotalPages() int {
	return TotalPages(len(v.Filtered), v.PageSize)
}

// GoToPage moves to the requested page. Out-of-range requests are a no-op;
// the view stays where it is.
func (v *View) GoToPage(page int) {
	if page < 1 || page > v.TotalPages() {
		return
	}
	v.Page = page
}

// PageSlice returns the accounts of the current page.
func (v *View) PageSlice() []*models.Account {
	return PageSlice(v.Filtered, v.Page, v.PageSize)
}

// Window returns the page-button window around the current page.
func (v *View) Window() Window {
	return PageWindow(v.Page, v.TotalPages(), MaxVisiblePages)
}
