package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

const recentOrdersLimit = 5

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	API    ports.MarketplaceAPI
	Client ports.ResourceClient
	Logger *slog.Logger
}

// DashboardService loads the landing page statistics.
type DashboardService struct {
	api    ports.MarketplaceAPI
	client ports.ResourceClient
	logger *slog.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		api:    opts.API,
		client: opts.Client,
		logger: logger.With("component", "dashboard_service"),
	}
}

// Dashboard is the landing page data.
type Dashboard struct {
	Counts       model.DashboardCounts
	RecentOrders []resource.Row
}

// Load fetches the counts and the most recent orders in parallel. Any
// failure fails the whole dashboard; there are no placeholder numbers.
func (s *DashboardService) Load(ctx context.Context) (Dashboard, error) {
	var out Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.api.DashboardCounts(gctx)
		if err != nil {
			return err
		}
		out.Counts = counts
		return nil
	})
	g.Go(func() error {
		col, err := s.client.List(gctx, ordersResource, resource.ListQuery{Page: 1, PageSize: recentOrdersLimit})
		if err != nil {
			return err
		}
		rows := col.Rows
		if len(rows) > recentOrdersLimit {
			rows = rows[:recentOrdersLimit]
		}
		out.RecentOrders = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "dashboard load failed", "error", err)
		return Dashboard{}, err
	}
	return out, nil
}
