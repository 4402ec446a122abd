// Package listing implements the paginated list contract shared by every
// resource screen: page bookkeeping, the page-button window, request state,
// column rendering, and the binder/controller pair that drive fetches.
package listing

// Page is the pagination position of a list view. Current is always within
// [1, Total] and Total is never below 1.
type Page struct {
	Current int
	Total   int
}

// NewPage builds a Page, defaulting Total to 1 and clamping Current into range.
func NewPage(current, total int) Page {
	if total < 1 {
		total = 1
	}
	p := Page{Total: total}
	p.Current = p.Clamp(current)
	return p
}

// Clamp forces n into [1, Total].
func (p Page) Clamp(n int) int {
	total := max(p.Total, 1)
	return min(max(n, 1), total)
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Current > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Current < p.Total }

// PrevTarget is the page a "previous" transition lands on.
func (p Page) PrevTarget() int { return max(p.Current-1, 1) }

// NextTarget is the page a "next" transition lands on.
func (p Page) NextTarget() int { return min(p.Current+1, max(p.Total, 1)) }
