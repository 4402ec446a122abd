package resource

import (
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
)

// OrderProgress is the label and completion bar for an order fulfilment status.
type OrderProgress struct {
	Label    string
	Progress int
	Tone     listing.Tone
}

// OrderStatus maps an order's fulfilment status to its label and progress.
func OrderStatus(status string) OrderProgress {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "CONFIRMED":
		return OrderProgress{Label: "Order Confirmed", Progress: 25, Tone: listing.ToneInfo}
	case "PENDING":
		return OrderProgress{Label: "Order Pending", Tone: listing.ToneWarning}
	case "PROCESSING":
		return OrderProgress{Label: "Processing", Progress: 50, Tone: listing.ToneWarning}
	case "SHIPPED":
		return OrderProgress{Label: "Shipped", Progress: 75, Tone: listing.ToneInfo}
	case "DELIVERED":
		return OrderProgress{Label: "Delivered", Progress: 100, Tone: listing.ToneSuccess}
	case "CANCELLED":
		return OrderProgress{Label: "Cancelled", Tone: listing.ToneDanger}
	default:
		return OrderProgress{Label: "Unknown"}
	}
}

// PaymentTone colors payment outcomes (SUCCESS, FAILED, PENDING).
func PaymentTone(status string) listing.Tone {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success":
		return listing.ToneSuccess
	case "pending":
		return listing.ToneWarning
	case "failed":
		return listing.ToneDanger
	default:
		return listing.ToneNeutral
	}
}

var vendorJobLabels = []string{"Order Placed", "Partner Assigned", "On the way", "Started", "Completed"}

// VendorJobStatus labels a vendor cart item's numeric job status.
func VendorJobStatus(code int, ok bool) string {
	if !ok || code < 0 || code >= len(vendorJobLabels) {
		return "Pending"
	}
	return vendorJobLabels[code]
}

// Option is one choice in a status select.
type Option struct {
	Value string
	Label string
}

// OrderWorkStatuses are the values accepted by the order "status" action.
var OrderWorkStatuses = []Option{
	{Value: "0", Label: "Order Placed"},
	{Value: "1", Label: "Working"},
	{Value: "2", Label: "Completed"},
}

// OrderItemStatuses are the values accepted by the order "item-status" action.
var OrderItemStatuses = []Option{
	{Value: "ORDERED", Label: "Order Placed"},
	{Value: "SHIPPED", Label: "Shipped"},
	{Value: "DELIVERED", Label: "Delivered"},
	{Value: "CANCELED", Label: "Canceled"},
}

// OptionLabel returns the label for value, or value itself when unknown.
func OptionLabel(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	if value == "" {
		return "N/A"
	}
	return value
}

// Active reports whether a row's status field means enabled. Categories use
// 1/0; vendors use ACTIVE/other strings.
func (r Row) Active(path string) bool {
	v, ok := r.Lookup(path)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToUpper(strings.TrimSpace(t))
		return s == "ACTIVE" || s == "1" || s == "TRUE"
	default:
		f, ok := ToFloat(v)
		return ok && f == 1
	}
}
