package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

const (
	ordersResource           = "orders"
	vendorsByServiceResource = "vendors-by-service"
	itemCategoryPath         = "variant.product.mainCategoryId"
	maxVendorLookups         = 4
)

// OrderServiceOptions groups dependencies for OrderService.
type OrderServiceOptions struct {
	Resources *ResourceService
	Logger    *slog.Logger
}

// OrderService assembles the order detail screen.
type OrderService struct {
	resources *ResourceService
	logger    *slog.Logger
}

// NewOrderService constructs an OrderService.
func NewOrderService(opts OrderServiceOptions) *OrderService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{resources: opts.Resources, logger: logger.With("component", "order_service")}
}

// OrderItem is one line of an order with the vendors able to fulfil it.
type OrderItem struct {
	Row        resource.Row
	CategoryID string
	Vendors    []resource.Option
	// VendorsErr is set when the vendor lookup for this item's category failed.
	VendorsErr string
}

// OrderDetail is an order with its items and status choices.
type OrderDetail struct {
	Order         resource.Row
	Progress      resource.OrderProgress
	Items         []OrderItem
	WorkStatuses  []resource.Option
	ItemStatuses  []resource.Option
	TotalQuantity int
}

// Detail loads an order, then resolves the vendor choices for each distinct
// item category in parallel. A failed vendor lookup degrades that item's
// assignment control only; the order itself still renders.
func (s *OrderService) Detail(ctx context.Context, id string) (OrderDetail, error) {
	if id == "" {
		return OrderDetail{}, apperrors.ValidationField("id", "order id is required")
	}
	order, err := s.resources.Get(ctx, ordersResource, id)
	if err != nil {
		return OrderDetail{}, err
	}

	raw := order.Items("orderItems")
	items := make([]OrderItem, 0, len(raw))
	categories := make(map[string]struct{})
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		row := resource.Row(m)
		item := OrderItem{Row: row, CategoryID: row.String(itemCategoryPath)}
		if item.CategoryID != "" {
			categories[item.CategoryID] = struct{}{}
		}
		items = append(items, item)
	}

	vendors := make(map[string][]resource.Option, len(categories))
	failures := make(map[string]string)
	results := make(chan vendorLookup, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxVendorLookups)
	for cat := range categories {
		g.Go(func() error {
			opts, err := s.resources.LookupOptions(gctx, vendorsByServiceResource, cat)
			results <- vendorLookup{category: cat, options: opts, err: err}
			// Auth failures abort the page; anything else is per item.
			if apperrors.IsAuth(err) {
				return err
			}
			return nil
		})
	}
	err = g.Wait()
	close(results)
	if err != nil {
		return OrderDetail{}, err
	}
	for r := range results {
		if r.err != nil {
			s.logger.WarnContext(ctx, "vendor lookup failed",
				"order_id", id, "category_id", r.category, "error", r.err)
			failures[r.category] = apperrors.UserMessage(r.err)
			continue
		}
		vendors[r.category] = r.options
	}
	for i := range items {
		items[i].Vendors = vendors[items[i].CategoryID]
		items[i].VendorsErr = failures[items[i].CategoryID]
	}

	return OrderDetail{
		Order:         order,
		Progress:      resource.OrderStatus(order.String("status")),
		Items:         items,
		WorkStatuses:  resource.OrderWorkStatuses,
		ItemStatuses:  resource.OrderItemStatuses,
		TotalQuantity: resource.ItemCount(order),
	}, nil
}

type vendorLookup struct {
	category string
	options  []resource.Option
	err      error
}

// AssignVendor assigns vendorID to the cart item behind an order line.
func (s *OrderService) AssignVendor(ctx context.Context, cartItemID, vendorID string) error {
	if vendorID == "" {
		return apperrors.ValidationField("vendor_id", "select a vendor")
	}
	return s.resources.Update(ctx, ordersResource, cartItemID, resource.Payload{
		Fields: map[string]any{"vendor_id": vendorID},
		Action: "assign-vendor",
	})
}

// SetStatus updates the work status of an order.
func (s *OrderService) SetStatus(ctx context.Context, orderID, status string) error {
	if !validOption(resource.OrderWorkStatuses, status) {
		return apperrors.ValidationField("status", "unknown order status")
	}
	return s.resources.Update(ctx, ordersResource, orderID, resource.Payload{
		Fields: map[string]any{"status": status},
		Action: "status",
	})
}

// SetItemStatus updates the shipping status of one order item.
func (s *OrderService) SetItemStatus(ctx context.Context, itemID, status string) error {
	if !validOption(resource.OrderItemStatuses, status) {
		return apperrors.ValidationField("status", "unknown item status")
	}
	return s.resources.Update(ctx, ordersResource, itemID, resource.Payload{
		Fields: map[string]any{"status": status},
		Action: "item-status",
	})
}

func validOption(options []resource.Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
