package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/mocks"
)

func newDashboardService(t *testing.T) (*mocks.MockMarketplaceAPI, *mocks.MockResourceClient, *DashboardService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMarketplaceAPI(ctrl)
	client := mocks.NewMockResourceClient(ctrl)
	return api, client, NewDashboardService(DashboardServiceOptions{API: api, Client: client})
}

func TestDashboardService_Load(t *testing.T) {
	t.Parallel()
	api, client, svc := newDashboardService(t)

	counts := model.DashboardCounts{Users: 120, Vendors: 14, UnverifiedVendors: 3, Orders: 57, Categories: 6, SubCategories: 19}
	api.EXPECT().DashboardCounts(gomock.Any()).Return(counts, nil)

	orders := make([]resource.Row, 7)
	for i := range orders {
		orders[i] = resource.Row{"id": i}
	}
	client.EXPECT().
		List(gomock.Any(), "orders", resource.ListQuery{Page: 1, PageSize: recentOrdersLimit}).
		Return(resource.Collection{Rows: orders, TotalPages: 2}, nil)

	got, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, counts, got.Counts)
	assert.Len(t, got.RecentOrders, recentOrdersLimit)
}

func TestDashboardService_LoadFailureHasNoPlaceholders(t *testing.T) {
	t.Parallel()
	api, client, svc := newDashboardService(t)

	api.EXPECT().DashboardCounts(gomock.Any()).Return(model.DashboardCounts{}, apperrors.Server(500, "boom"))
	client.EXPECT().List(gomock.Any(), "orders", gomock.Any()).
		Return(resource.Collection{Rows: []resource.Row{{"id": 1}}, TotalPages: 1}, nil).
		AnyTimes()

	got, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsServer(err))
	assert.Equal(t, Dashboard{}, got)
}
