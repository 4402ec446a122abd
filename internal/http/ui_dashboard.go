package httpx

import (
	"net/http"
	"net/url"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
)

// statCard is one headline number on the dashboard.
type statCard struct {
	Label string
	Value int
	URL   string
}

type recentOrder struct {
	ID       string
	URL      string
	Customer string
	Amount   string
	Status   resource.OrderProgress
	Payment  string
	Tone     listing.Tone
}

// DashboardPage serves the landing page. Counts either all load or the page
// shows an error with a retry link; partial numbers are never shown.
func (h *UIHandlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	meta := PageMeta{Title: "Dashboard - Marketplace Admin", PageTitle: "Dashboard", CurrentPage: PageDashboard}
	builder := h.NewTemplateData(r, meta)
	if h.Dashboard == nil {
		h.renderPage(w, r, builder.WithError("Dashboard is unavailable.").Build())
		return
	}

	d, err := h.Dashboard.Load(r.Context())
	if err != nil {
		if h.redirectOnAuth(w, r, err) {
			return
		}
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			PageMeta:   meta,
			Data:       map[string]any{"RetryURL": "/"},
			StatusCode: DetermineErrorStatus(err),
		})
		return
	}

	c := d.Counts
	cards := []statCard{
		{Label: "Users", Value: c.Users, URL: "/r/users"},
		{Label: "Vendors", Value: c.Vendors, URL: "/r/vendors"},
		{Label: "Unverified vendors", Value: c.UnverifiedVendors, URL: "/r/vendors"},
		{Label: "Orders", Value: c.Orders, URL: "/r/orders"},
		{Label: "Categories", Value: c.Categories, URL: "/r/categories"},
		{Label: "Sub categories", Value: c.SubCategories, URL: "/r/sub-categories"},
	}
	recent := make([]recentOrder, 0, len(d.RecentOrders))
	for _, row := range d.RecentOrders {
		id := row.First("id", "_id")
		payment := row.String("orderStatus")
		recent = append(recent, recentOrder{
			ID:       id,
			URL:      "/r/orders/" + url.PathEscape(id),
			Customer: row.First("user.name", "name"),
			Amount:   resource.FormatMoney(row, "totalAmount"),
			Status:   resource.OrderStatus(row.String("status")),
			Payment:  payment,
			Tone:     resource.PaymentTone(payment),
		})
	}

	h.renderPage(w, r, builder.
		With("Stats", cards).
		With("RecentOrders", recent).
		Build())
}
