package viewmodel

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
)

func TestNewPager(t *testing.T) {
	link := func(n int) string { return "/r/orders?page=" + strconv.Itoa(n) }

	got := NewPager(listing.NewWindow(listing.Page{Current: 7, Total: 20}), link)
	want := Pager{
		Current: 7,
		Total:   20,
		Pages: []PageLink{
			{Number: 5, URL: link(5)},
			{Number: 6, URL: link(6)},
			{Number: 7, URL: link(7), Current: true},
			{Number: 8, URL: link(8)},
			{Number: 9, URL: link(9)},
		},
		First:            PageLink{Number: 1, URL: link(1)},
		ShowFirst:        true,
		LeadingEllipsis:  true,
		Last:             PageLink{Number: 20, URL: link(20)},
		ShowLast:         true,
		TrailingEllipsis: true,
		PrevURL:          link(6),
		NextURL:          link(8),
		HasPrev:          true,
		HasNext:          true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pager mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPager_SinglePageHidesControls(t *testing.T) {
	got := NewPager(listing.NewWindow(listing.Page{Current: 1, Total: 1}), func(int) string { return "/x" })
	if !got.Hidden {
		t.Fatal("expected single-page pager to be hidden")
	}
	if got.PrevURL != "" || got.NextURL != "" {
		t.Fatalf("expected no prev/next links, got %q / %q", got.PrevURL, got.NextURL)
	}
}
