package directory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yhlin/memberdir/internal/models"
)

func account(handle, name string) *models.Account {
	return &models.Account{Account: handle, DisplayName: name}
}

func accounts(n int) []*models.Account {
	out := make([]*models.Account, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, account(fmt.Sprintf("user%02d", i), fmt.Sprintf("User %02d", i)))
	}
	return out
}

func TestFilter_EmptyQueryReturnsInput(t *testing.T) {
	all := accounts(3)

	filtered := Filter(all, "")

	assert.Len(t, filtered, 3)
	// identity, not a copy
	assert.Same(t, all[0], filtered[0])
}

func TestFilter_CaseInsensitiveSubstringOverBothFields(t *testing.T) {
	all := []*models.Account{
		account("Bob1", "Alice"),
		account("carl", "Bobby"),
	}

	filtered := Filter(all, "bob")

	// "bob" hits "Bob1" on the handle and "Bobby" on the display name
	assert.Len(t, filtered, 2)
}

func TestFilter_NoMatchOnPhoneOrAddress(t *testing.T) {
	phone := "5551234"
	address := "12 Harbor Rd"
	a := account("dora", "Dora Lin")
	a.Phone = &phone
	a.Address = &address

	filtered := Filter([]*models.Account{a}, "5551234")
	assert.Empty(t, filtered)

	filtered = Filter([]*models.Account{a}, "harbor")
	assert.Empty(t, filtered)
}

func TestFilter_NoMatch(t *testing.T) {
	filtered := Filter(accounts(5), "zzz")

	assert.Empty(t, filtered)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, pageSize, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{30, 10, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.n, tt.pageSize), "n=%d", tt.n)
	}
}

func TestPageSlice_LastPartialPage(t *testing.T) {
	all := accounts(23)

	slice := PageSlice(all, 3, 10)

	assert.Len(t, slice, 3)
	assert.Equal(t, "user20", slice[0].Account)
}

func TestPageSlice_BeyondRangeIsEmpty(t *testing.T) {
	slice := PageSlice(accounts(5), 4, 10)

	assert.Empty(t, slice)
}

func TestView_GoToPage_OutOfRangeIsNoOp(t *testing.T) {
	v := NewView(accounts(23), "", 10)

	assert.Equal(t, 3, v.TotalPages())

	v.GoToPage(2)
	assert.Equal(t, 2, v.Page)

	v.GoToPage(0)
	assert.Equal(t, 2, v.Page)

	v.GoToPage(4)
	assert.Equal(t, 2, v.Page)

	v.GoToPage(3)
	assert.Equal(t, 3, v.Page)
	assert.Len(t, v.PageSlice(), 3)
}

func TestView_SetQueryResetsPage(t *testing.T) {
	v := NewView(accounts(23), "", 10)
	v.GoToPage(3)

	v.SetQuery("user0")

	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Filtered, 10) // user00..user09
}

func TestView_ClearQueryRestoresAll(t *testing.T) {
	v := NewView(accounts(23), "user01", 10)
	assert.Len(t, v.Filtered, 1)

	v.SetQuery("")

	assert.Len(t, v.Filtered, 23)
	assert.Equal(t, 1, v.Page)
}

func TestPageWindow_Centered(t *testing.T) {
	w := PageWindow(5, 9, 5)

	assert.Equal(t, []int{3, 4, 5, 6, 7}, w.Pages)
	assert.True(t, w.LeadingEllipsis)
	assert.True(t, w.TrailingEllipsis)
}

func TestPageWindow_ClampedToStart(t *testing.T) {
	w := PageWindow(1, 9, 5)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, w.Pages)
	assert.False(t, w.LeadingEllipsis)
	assert.True(t, w.TrailingEllipsis)
}

func TestPageWindow_ClampedToEnd(t *testing.T) {
	w := PageWindow(9, 9, 5)

	// overflow shifts the window fully onto the upper bound
	assert.Equal(t, []int{5, 6, 7, 8, 9}, w.Pages)
	assert.True(t, w.LeadingEllipsis)
	assert.False(t, w.TrailingEllipsis)
}

func TestPageWindow_FewerPagesThanWindow(t *testing.T) {
	w := PageWindow(2, 3, 5)

	assert.Equal(t, []int{1, 2, 3}, w.Pages)
	assert.False(t, w.LeadingEllipsis)
	assert.False(t, w.TrailingEllipsis)
}

func TestPageWindow_SinglePage(t *testing.T) {
	w := PageWindow(1, 1, 5)

	assert.Equal(t, []int{1}, w.Pages)
	assert.False(t, w.LeadingEllipsis)
	assert.False(t, w.TrailingEllipsis)
}
