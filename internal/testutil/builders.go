package testutil

import (
	"time"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
)

// OrderBuilder builds order rows shaped like the marketplace API's.
type OrderBuilder struct {
	row   resource.Row
	items []any
}

// NewOrder starts an order with sensible defaults.
func NewOrder(id string) *OrderBuilder {
	return &OrderBuilder{row: resource.Row{
		"id":            id,
		"status":        "CONFIRMED",
		"paymentStatus": "SUCCESS",
		"totalAmount":   499.0,
		"createdAt":     TestTime().Format(time.RFC3339),
		"user":          map[string]any{"name": "Test Customer"},
	}}
}

// WithStatus sets the order status.
func (b *OrderBuilder) WithStatus(status string) *OrderBuilder {
	b.row["status"] = status
	return b
}

// WithItem appends an order item for a product in categoryID.
func (b *OrderBuilder) WithItem(cartItemID, categoryID string, quantity int) *OrderBuilder {
	b.items = append(b.items, map[string]any{
		"id":           "oi-" + cartItemID,
		"cart_item_id": cartItemID,
		"quantity":     float64(quantity),
		"status":       "ORDERED",
		"variant": map[string]any{
			"product": map[string]any{"name": "Product " + cartItemID, "mainCategoryId": categoryID},
		},
	})
	return b
}

// Build returns the row.
func (b *OrderBuilder) Build() resource.Row {
	out := make(resource.Row, len(b.row)+1)
	for k, v := range b.row {
		out[k] = v
	}
	out["orderItems"] = append([]any(nil), b.items...)
	return out
}
