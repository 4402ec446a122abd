package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

func orderItem(cartItemID, categoryID string, qty int) map[string]any {
	return map[string]any{
		"cart_item_id": cartItemID,
		"quantity":     float64(qty),
		"variant": map[string]any{
			"product": map[string]any{"name": "Item " + cartItemID, "mainCategoryId": categoryID},
		},
	}
}

func TestOrderService_Detail(t *testing.T) {
	t.Parallel()
	f := newResourceFixture(t, "tok")
	svc := NewOrderService(OrderServiceOptions{Resources: f.svc})

	order := resource.Row{
		"id":     "o-1",
		"status": "SHIPPED",
		"orderItems": []any{
			orderItem("ci-1", "cat-a", 2),
			orderItem("ci-2", "cat-b", 1),
			orderItem("ci-3", "cat-a", 3),
			"garbage",
		},
	}
	f.client.EXPECT().Get(gomock.Any(), "orders", "o-1").Return(order, nil)
	f.client.EXPECT().
		List(gomock.Any(), "vendors-by-service", resource.ListQuery{Page: 1, PageSize: lookupPageSize, Parent: "cat-a"}).
		Return(resource.Collection{Rows: []resource.Row{{"id": "v1", "full_name": "Asha Plumbing"}}, TotalPages: 1}, nil)
	f.client.EXPECT().
		List(gomock.Any(), "vendors-by-service", resource.ListQuery{Page: 1, PageSize: lookupPageSize, Parent: "cat-b"}).
		Return(resource.Collection{}, apperrors.Server(500, "boom"))

	got, err := svc.Detail(context.Background(), "o-1")
	require.NoError(t, err)

	assert.Equal(t, "Shipped", got.Progress.Label)
	assert.Equal(t, 6, got.TotalQuantity)
	require.Len(t, got.Items, 3)

	assert.Equal(t, []resource.Option{{Value: "v1", Label: "Asha Plumbing"}}, got.Items[0].Vendors)
	assert.Empty(t, got.Items[0].VendorsErr)
	assert.Empty(t, got.Items[1].Vendors)
	assert.NotEmpty(t, got.Items[1].VendorsErr)
	assert.Equal(t, got.Items[0].Vendors, got.Items[2].Vendors)
	assert.Equal(t, resource.OrderWorkStatuses, got.WorkStatuses)
}

func TestOrderService_DetailAuthFailureAbortsPage(t *testing.T) {
	t.Parallel()
	f := newResourceFixture(t, "tok")
	svc := NewOrderService(OrderServiceOptions{Resources: f.svc})

	f.client.EXPECT().Get(gomock.Any(), "orders", "o-2").
		Return(resource.Row{"orderItems": []any{orderItem("ci-1", "cat-a", 1)}}, nil)
	f.client.EXPECT().List(gomock.Any(), "vendors-by-service", gomock.Any()).
		Return(resource.Collection{}, apperrors.Auth("expired"))

	_, err := svc.Detail(context.Background(), "o-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
}

func TestOrderService_Mutations(t *testing.T) {
	t.Parallel()
	f := newResourceFixture(t, "tok")
	svc := NewOrderService(OrderServiceOptions{Resources: f.svc})
	ctx := context.Background()

	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	f.client.EXPECT().Update(gomock.Any(), "orders", "ci-1",
		resource.Payload{Fields: map[string]any{"vendor_id": "v1"}, Action: "assign-vendor"}).Return(nil)
	f.client.EXPECT().Update(gomock.Any(), "orders", "o-1",
		resource.Payload{Fields: map[string]any{"status": "1"}, Action: "status"}).Return(nil)
	f.client.EXPECT().Update(gomock.Any(), "orders", "oi-9",
		resource.Payload{Fields: map[string]any{"status": "DELIVERED"}, Action: "item-status"}).Return(nil)

	require.NoError(t, svc.AssignVendor(ctx, "ci-1", "v1"))
	require.NoError(t, svc.SetStatus(ctx, "o-1", "1"))
	require.NoError(t, svc.SetItemStatus(ctx, "oi-9", "DELIVERED"))

	err := svc.SetStatus(ctx, "o-1", "7")
	assert.Equal(t, "status", apperrors.GetField(err))
	err = svc.SetItemStatus(ctx, "oi-9", "LOST")
	assert.True(t, apperrors.IsValidation(err))
	err = svc.AssignVendor(ctx, "ci-1", "")
	assert.Equal(t, "vendor_id", apperrors.GetField(err))
	_, err = svc.Detail(ctx, "")
	assert.True(t, apperrors.IsValidation(err))
}
