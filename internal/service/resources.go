package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/observability/metrics"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

const (
	defaultLookupCacheSize = 256
	defaultLookupCacheTTL  = time.Minute
	lookupPageSize         = 100
	// ActorCLI is recorded when a mutation has no console session.
	ActorCLI = "cli"
)

// ResourceServiceOptions groups dependencies for ResourceService.
type ResourceServiceOptions struct {
	Client  ports.ResourceClient
	Catalog *resource.Catalog
	Tokens  ports.TokenProvider
	// Audit is optional; nil disables the audit trail.
	Audit    ports.AuditRecorder
	Metrics  statsd.Sink
	Logger   *slog.Logger
	PageSize int
	// LookupCacheSize and LookupCacheTTL bound the dropdown option cache.
	LookupCacheSize int
	LookupCacheTTL  time.Duration
}

// ResourceService builds list views over marketplace resources and runs
// their mutations, recording each mutation in the audit trail.
type ResourceService struct {
	client   ports.ResourceClient
	catalog  *resource.Catalog
	tokens   ports.TokenProvider
	audit    ports.AuditRecorder
	metrics  statsd.Sink
	logger   *slog.Logger
	pageSize int

	// lookups starts an expiry goroutine that lives as long as the process;
	// build one service per process, not per request.
	lookups *lru.LRU[string, []resource.Option]
	group   singleflight.Group
}

// NewResourceService constructs a ResourceService.
func NewResourceService(opts ResourceServiceOptions) *ResourceService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}
	size := opts.LookupCacheSize
	if size <= 0 {
		size = defaultLookupCacheSize
	}
	ttl := opts.LookupCacheTTL
	if ttl <= 0 {
		ttl = defaultLookupCacheTTL
	}
	return &ResourceService{
		client:   opts.Client,
		catalog:  opts.Catalog,
		tokens:   opts.Tokens,
		audit:    opts.Audit,
		metrics:  sink,
		logger:   logger.With("component", "resource_service"),
		pageSize: opts.PageSize,
		lookups:  lru.NewLRU[string, []resource.Option](size, nil, ttl),
	}
}

// Catalog exposes the configured endpoints.
func (s *ResourceService) Catalog() *resource.Catalog { return s.catalog }

// Endpoint looks up a resource, reporting unknown names as NotFound.
func (s *ResourceService) Endpoint(name string) (resource.Endpoint, error) {
	ep, err := s.catalog.Lookup(name)
	if err != nil {
		return resource.Endpoint{}, apperrors.NotFoundf("Unknown resource %q", name)
	}
	return ep, nil
}

// ViewQuery selects the list a view shows.
type ViewQuery struct {
	Page    int
	Parent  string
	Filters map[string]string
}

// PageSizeFor is the page size used when listing ep.
func (s *ResourceService) PageSizeFor(ep resource.Endpoint) int {
	if s.pageSize > 0 {
		return s.pageSize
	}
	return ep.PageSize
}

// NewListView builds the binder and pagination controller for one list
// screen. Nothing is fetched until the controller is mounted.
func (s *ResourceService) NewListView(name string, q ViewQuery) (*listing.Controller[resource.Row], error) {
	ep, err := s.Endpoint(name)
	if err != nil {
		return nil, err
	}
	size := s.PageSizeFor(ep)
	filters := cloneFilters(q.Filters)
	binder := listing.NewBinder(listing.BinderOptions[resource.Row]{
		Tokens: s.tokens,
		Fetch: func(ctx context.Context, page int) (listing.Result[resource.Row], error) {
			col, err := s.client.List(ctx, name, resource.ListQuery{
				Page:     page,
				PageSize: size,
				Parent:   q.Parent,
				Filters:  filters,
			})
			if err != nil {
				return listing.Result[resource.Row]{}, err
			}
			return listing.Result[resource.Row]{Rows: col.Rows, TotalPages: col.TotalPages}, nil
		},
		Columns:  resource.Columns(name),
		RowID:    resource.RowID(ep),
		PageSize: size,
		Describe: apperrors.UserMessage,
		Logger:   s.logger.With("resource", name),
	})
	return listing.NewController(binder, q.Page), nil
}

// Get fetches one row.
func (s *ResourceService) Get(ctx context.Context, name, id string) (resource.Row, error) {
	return s.client.Get(ctx, name, id)
}

// Create submits a new row.
func (s *ResourceService) Create(ctx context.Context, name string, p resource.Payload) (resource.Row, error) {
	row, err := s.client.Create(ctx, name, p)
	s.finishMutation(ctx, name, "create", "", err)
	return row, err
}

// Update edits a row, or runs the custom action named by p.Action.
func (s *ResourceService) Update(ctx context.Context, name, id string, p resource.Payload) error {
	err := s.client.Update(ctx, name, id, p)
	action := "update"
	if p.Action != "" {
		action = p.Action
	}
	s.finishMutation(ctx, name, action, id, err)
	return err
}

// Remove deletes a row.
func (s *ResourceService) Remove(ctx context.Context, name, id string) error {
	err := s.client.Remove(ctx, name, id)
	s.finishMutation(ctx, name, "delete", id, err)
	return err
}

// DeleteAction is the confirmed-delete row action for a list view.
func (s *ResourceService) DeleteAction(name, id string, confirmed bool) listing.Action {
	ep, _ := s.catalog.Lookup(name)
	return listing.Action{
		Kind:      listing.ActionDelete,
		ID:        id,
		Confirmed: confirmed,
		Success:   ep.Remove.Success,
		Run:       func(ctx context.Context) error { return s.Remove(ctx, name, id) },
	}
}

// CustomAction is a row action bound to Endpoint.Actions[action]. Status
// toggles are reported as such so their notice reads naturally.
func (s *ResourceService) CustomAction(name, id, action string, fields map[string]any) listing.Action {
	ep, _ := s.catalog.Lookup(name)
	spec, _ := ep.Action(action)
	kind := listing.ActionCustom
	if action == "status" {
		kind = listing.ActionToggleStatus
	}
	return listing.Action{
		Kind:    kind,
		ID:      id,
		Success: spec.Success,
		Run: func(ctx context.Context) error {
			return s.Update(ctx, name, id, resource.Payload{Fields: fields, Action: action})
		},
	}
}

func (s *ResourceService) finishMutation(ctx context.Context, name, action, id string, err error) {
	metrics.EmitMutation(s.metrics, metrics.MutationMetric{Resource: name, Action: action, Err: err})
	if err == nil {
		s.invalidateLookups(name)
	}
	s.record(ctx, name, action, id, err)
}

func (s *ResourceService) record(ctx context.Context, name, action, id string, mutationErr error) {
	if s.audit == nil {
		return
	}
	entry := model.AuditEntry{
		Actor:    actorFrom(ctx),
		Resource: name,
		Action:   action,
		Outcome:  model.AuditOutcomeSuccess,
	}
	if id != "" {
		entry.TargetID = &id
	}
	if mutationErr != nil {
		entry.Outcome = model.AuditOutcomeFailure
		entry.Message = apperrors.UserMessage(mutationErr)
	}
	// The mutation already happened upstream; an audit failure must not
	// turn it into an error for the admin.
	if err := s.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.ErrorContext(ctx, "record audit entry failed",
			"resource", name, "action", action, "error", err)
	}
}

func actorFrom(ctx context.Context) string {
	sess, ok := domainauth.SessionFrom(ctx)
	if !ok {
		return ActorCLI
	}
	if sess.Email != "" {
		return sess.Email
	}
	if sess.UserID != "" {
		return sess.UserID
	}
	return ActorCLI
}

// LookupOptions returns (id, label) choices for a select populated from
// name. Results are shared across admins for a short TTL and concurrent
// misses for the same key collapse into one upstream call.
func (s *ResourceService) LookupOptions(ctx context.Context, name, parent string) ([]resource.Option, error) {
	key := name + "|" + parent
	if opts, ok := s.lookups.Get(key); ok {
		metrics.CacheLookup(s.metrics, name, true)
		return opts, nil
	}
	metrics.CacheLookup(s.metrics, name, false)

	v, err, _ := s.group.Do(key, func() (any, error) {
		col, err := s.client.List(ctx, name, resource.ListQuery{Page: 1, PageSize: lookupPageSize, Parent: parent})
		if err != nil {
			return nil, err
		}
		ep, _ := s.catalog.Lookup(name)
		opts := make([]resource.Option, 0, len(col.Rows))
		for _, row := range col.Rows {
			id := row.ID(ep.IDField)
			if id == "" {
				continue
			}
			label := row.First("name", "full_name", "title", "email")
			if label == "" {
				label = id
			}
			opts = append(opts, resource.Option{Value: id, Label: label})
		}
		s.lookups.Add(key, opts)
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]resource.Option), nil
}

func (s *ResourceService) invalidateLookups(name string) {
	prefix := name + "|"
	for _, key := range s.lookups.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.lookups.Remove(key)
		}
	}
}

func cloneFilters(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

// Describe renders an endpoint's capabilities for logs and the CLI.
func Describe(ep resource.Endpoint) string {
	var ops []string
	if ep.CanGet() {
		ops = append(ops, "get")
	}
	if ep.CanCreate() {
		ops = append(ops, "create")
	}
	if ep.CanUpdate() {
		ops = append(ops, "update")
	}
	if ep.CanRemove() {
		ops = append(ops, "delete")
	}
	ops = append(ops, ep.ActionNames()...)
	if len(ops) == 0 {
		return fmt.Sprintf("%s (read-only)", ep.List.Path)
	}
	return fmt.Sprintf("%s [%s]", ep.List.Path, strings.Join(ops, ", "))
}
