package ports

import (
	"context"
	"time"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
)

// TokenProvider supplies the bearer credential for marketplace API calls.
// ok is false when no credential is available; callers must not issue
// unauthenticated requests in that case.
type TokenProvider interface {
	Token(ctx context.Context) (token string, ok bool)
}

// ResourceClient issues requests against the marketplace admin API. Every
// failure is one of the typed errors in internal/errors.
type ResourceClient interface {
	List(ctx context.Context, name string, q resource.ListQuery) (resource.Collection, error)
	Get(ctx context.Context, name, id string) (resource.Row, error)
	Create(ctx context.Context, name string, p resource.Payload) (resource.Row, error)
	// Update sends p to the endpoint's update request, or to the custom
	// action named by p.Action.
	Update(ctx context.Context, name, id string, p resource.Payload) error
	Remove(ctx context.Context, name, id string) error
}

// MarketplaceAPI covers the non-resource endpoints: dashboard counts and
// platform settings.
type MarketplaceAPI interface {
	DashboardCounts(ctx context.Context) (model.DashboardCounts, error)
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
}

// AuditRecorder persists console mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entry model.AuditEntry) error
}

// AuditReader lists recorded console mutations, newest first.
type AuditReader interface {
	List(ctx context.Context, opts model.AuditListOptions) (model.AuditPage, error)
}

// AuditPruner deletes audit entries older than a retention window, at most
// batchSize rows per call.
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}
