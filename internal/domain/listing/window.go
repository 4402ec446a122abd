package listing

// WindowSize is the maximum number of consecutive page buttons rendered.
const WindowSize = 5

// Window describes the page buttons for a Page: up to WindowSize consecutive
// pages starting two before the current one, with optional jumps to the first
// and last page and ellipses when those jumps skip pages.
type Window struct {
	Pages   []int
	Current int

	First            int
	ShowFirst        bool
	LeadingEllipsis  bool
	Last             int
	ShowLast         bool
	TrailingEllipsis bool

	Prev    int
	Next    int
	HasPrev bool
	HasNext bool
}

// NewWindow computes the button window for p. The first and last jumps are
// shown only for pages outside the window, so no page is drawn twice.
func NewWindow(p Page) Window {
	p = NewPage(p.Current, p.Total)
	cur, total := p.Current, p.Total

	start := max(1, cur-2)
	end := min(start+WindowSize-1, total)
	pages := make([]int, 0, WindowSize)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}

	return Window{
		Pages:            pages,
		Current:          cur,
		First:            1,
		ShowFirst:        start > 1,
		LeadingEllipsis:  start > 2,
		Last:             total,
		ShowLast:         end < total,
		TrailingEllipsis: end < total-1,
		Prev:             p.PrevTarget(),
		Next:             p.NextTarget(),
		HasPrev:          p.HasPrev(),
		HasNext:          p.HasNext(),
	}
}

// Single reports whether there is only one page, in which case views usually
// hide the pager entirely.
func (w Window) Single() bool {
	return w.Last <= 1
}
