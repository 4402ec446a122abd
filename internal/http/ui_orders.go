package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/http/uiutil"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

type orderItemView struct {
	ID           string
	Name         string
	Quantity     string
	Price        string
	Status       string
	StatusLabel  string
	VendorID     string
	Vendors      []resource.Option
	VendorsError string
	StatusURL    string
	VendorURL    string
}

type orderView struct {
	ID              string
	Customer        string
	Mobile          string
	Address         string
	Date            string
	PlacedAt        time.Time
	Amount          string
	Payment         string
	PaymentTone     listing.Tone
	Progress        resource.OrderProgress
	WorkStatus      string
	WorkStatusLabel string
	TotalQuantity   int
	Items           []orderItemView
	WorkStatuses    []resource.Option
	ItemStatuses    []resource.Option
	StatusURL       string
}

func newOrderView(id string, d service.OrderDetail) orderView {
	o := d.Order
	base := "/orders/" + url.PathEscape(id)
	v := orderView{
		ID:              id,
		Customer:        o.First("user.name", "name"),
		Mobile:          o.First("user.mobile", "mobile"),
		Address:         o.First("address.address", "shippingAddress", "address"),
		Amount:          resource.FormatMoney(o, "totalAmount"),
		Payment:         o.String("orderStatus"),
		PaymentTone:     resource.PaymentTone(o.String("orderStatus")),
		Progress:        d.Progress,
		WorkStatus:      o.First("work_status", "workStatus"),
		WorkStatusLabel: resource.OptionLabel(d.WorkStatuses, o.First("work_status", "workStatus")),
		TotalQuantity:   d.TotalQuantity,
		WorkStatuses:    d.WorkStatuses,
		ItemStatuses:    d.ItemStatuses,
		StatusURL:       base + "/status",
	}
	if t, ok := o.Time("createdAt"); ok {
		v.Date = uiutil.DateTime(t)
		v.PlacedAt = t
	}
	for _, it := range d.Items {
		row := it.Row
		itemID := row.First("cart_item_id", "cartItemId", "id")
		status := row.String("status")
		iv := orderItemView{
			ID:           itemID,
			Name:         row.First("variant.product.name", "product.name", "name"),
			Quantity:     row.String("quantity"),
			Price:        resource.FormatMoney(row, "price"),
			Status:       status,
			StatusLabel:  resource.OptionLabel(d.ItemStatuses, status),
			VendorID:     row.First("vendor_id", "vendorId", "vendor.id"),
			Vendors:      it.Vendors,
			VendorsError: it.VendorsErr,
		}
		if itemID != "" {
			iv.StatusURL = base + "/items/" + url.PathEscape(itemID) + "/status"
			iv.VendorURL = base + "/items/" + url.PathEscape(itemID) + "/vendor"
		}
		v.Items = append(v.Items, iv)
	}
	return v
}

// OrderDetail serves GET /r/orders/{id}: the order, its items, and vendor
// assignment controls.
func (h *UIHandlers) OrderDetail(w http.ResponseWriter, r *http.Request) {
	h.renderOrder(w, r, r.PathValue("id"), "")
}

func (h *UIHandlers) renderOrder(w http.ResponseWriter, r *http.Request, id, banner string) {
	meta := PageMeta{Title: "Order " + id + " - Marketplace Admin", PageTitle: "Order details", CurrentPage: PageOrder}
	if h.Orders == nil {
		h.NotFound(w, r)
		return
	}
	detail, err := h.Orders.Detail(r.Context(), id)
	if err != nil {
		if h.redirectOnAuth(w, r, err) {
			return
		}
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			PageMeta:   meta,
			Data:       map[string]any{"BackURL": "/r/orders", "RetryURL": "/r/orders/" + url.PathEscape(id)},
			StatusCode: DetermineErrorStatus(err),
		})
		return
	}

	builder := h.NewTemplateData(r, meta).
		With("Order", newOrderView(id, detail)).
		With("BackURL", "/r/orders")
	if banner != "" {
		builder.WithError(banner)
	}
	h.renderPage(w, r, builder.Build())
}

// OrderSetStatus serves POST /orders/{id}/status.
func (h *UIHandlers) OrderSetStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.orderMutation(w, r, id, "Order status updated.", func(ctx context.Context) error {
		return h.Orders.SetStatus(ctx, id, strings.TrimSpace(r.PostFormValue("status")))
	})
}

// OrderSetItemStatus serves POST /orders/{id}/items/{item}/status.
func (h *UIHandlers) OrderSetItemStatus(w http.ResponseWriter, r *http.Request) {
	item := r.PathValue("item")
	h.orderMutation(w, r, r.PathValue("id"), "Item status updated.", func(ctx context.Context) error {
		return h.Orders.SetItemStatus(ctx, item, strings.TrimSpace(r.PostFormValue("status")))
	})
}

// OrderAssignVendor serves POST /orders/{id}/items/{item}/vendor.
func (h *UIHandlers) OrderAssignVendor(w http.ResponseWriter, r *http.Request) {
	item := r.PathValue("item")
	h.orderMutation(w, r, r.PathValue("id"), "Vendor assigned successfully!", func(ctx context.Context) error {
		return h.Orders.AssignVendor(ctx, item, strings.TrimSpace(r.PostFormValue("vendor_id")))
	})
}

// orderMutation runs one order change, then refetches and renders the order.
// A failed change leaves an htmx page untouched and reports it as a toast.
func (h *UIHandlers) orderMutation(w http.ResponseWriter, r *http.Request, id, success string, run func(context.Context) error) {
	if h.Orders == nil {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := run(r.Context()); err != nil {
		if h.redirectOnAuth(w, r, err) {
			return
		}
		msg := apperrors.UserMessage(err)
		h.logger().WarnContext(r.Context(), "order update failed", "order_id", id, "error", err)
		if IsHTMX(r) {
			HTMX(w).NoSwap()
			triggerToast(w, msg, "error")
			w.WriteHeader(http.StatusOK)
			return
		}
		h.renderOrder(w, r, id, msg)
		return
	}
	triggerToast(w, success, "success")
	h.renderOrder(w, r, id, "")
}
