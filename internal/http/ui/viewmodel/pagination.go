package viewmodel

import "github.com/urbanmart/marketplace-admin/internal/domain/listing"

// PageLink is one numbered pager button.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// Pager is a listing.Window with every button resolved to a URL.
type Pager struct {
	Current int
	Total   int
	Pages   []PageLink

	First            PageLink
	ShowFirst        bool
	LeadingEllipsis  bool
	Last             PageLink
	ShowLast         bool
	TrailingEllipsis bool

	PrevURL string
	NextURL string
	HasPrev bool
	HasNext bool

	// Hidden is set when there is a single page.
	Hidden bool
}

// NewPager resolves w through link, which maps a page number to its URL.
func NewPager(w listing.Window, link func(page int) string) Pager {
	p := Pager{
		Current:          w.Current,
		Total:            w.Last,
		First:            PageLink{Number: w.First, URL: link(w.First)},
		ShowFirst:        w.ShowFirst,
		LeadingEllipsis:  w.LeadingEllipsis,
		Last:             PageLink{Number: w.Last, URL: link(w.Last)},
		ShowLast:         w.ShowLast,
		TrailingEllipsis: w.TrailingEllipsis,
		HasPrev:          w.HasPrev,
		HasNext:          w.HasNext,
		Hidden:           w.Single(),
	}
	if w.HasPrev {
		p.PrevURL = link(w.Prev)
	}
	if w.HasNext {
		p.NextURL = link(w.Next)
	}
	p.Pages = make([]PageLink, 0, len(w.Pages))
	for _, n := range w.Pages {
		p.Pages = append(p.Pages, PageLink{Number: n, URL: link(n), Current: n == w.Current})
	}
	return p
}
