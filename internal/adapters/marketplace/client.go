// Package marketplace is the HTTP adapter for the marketplace admin REST API.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/observability/metrics"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Config captures what the client needs to reach the API.
type Config struct {
	BaseURL string
	Catalog *resource.Catalog
	Tokens  ports.TokenProvider
	// PageSize is used when neither the query nor the endpoint sets one.
	PageSize int
	Timeout  time.Duration
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
	Client    *http.Client
	Metrics   statsd.Sink
	Logger    *slog.Logger
}

// Client implements ports.ResourceClient and ports.MarketplaceAPI.
type Client struct {
	baseURL  *url.URL
	catalog  *resource.Catalog
	tokens   ports.TokenProvider
	pageSize int
	hc       *http.Client
	limiter  *rate.Limiter
	metrics  statsd.Sink
	logger   *slog.Logger
	norms    map[string]*normalizer
}

var (
	_ ports.ResourceClient = (*Client)(nil)
	_ ports.MarketplaceAPI = (*Client)(nil)
)

// NewClient validates cfg and precompiles every endpoint's normalizer.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("marketplace base url %q is not absolute", cfg.BaseURL)
	}
	if cfg.Catalog == nil {
		return nil, errors.New("marketplace client requires a resource catalog")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("marketplace client requires a token provider")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.Client
	if hc == nil {
		hc = NewHTTPClient(timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}

	c := &Client{
		baseURL:  base,
		catalog:  cfg.Catalog,
		tokens:   cfg.Tokens,
		pageSize: cfg.PageSize,
		hc:       hc,
		metrics:  sink,
		logger:   logger.With("component", "marketplace_client"),
		norms:    make(map[string]*normalizer),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	for _, ep := range cfg.Catalog.Endpoints() {
		n, err := newNormalizer(ep.List)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", ep.Name, err)
		}
		c.norms[ep.Name] = n
	}
	return c, nil
}

// Catalog returns the endpoints the client was built with.
func (c *Client) Catalog() *resource.Catalog { return c.catalog }

// List fetches one page of a resource.
func (c *Client) List(ctx context.Context, name string, q resource.ListQuery) (resource.Collection, error) {
	ep, err := c.endpoint(name)
	if err != nil {
		return resource.Collection{}, err
	}
	path, err := ep.ListPath(q.Parent)
	if err != nil {
		return resource.Collection{}, apperrors.Validation(err.Error())
	}

	size := q.PageSize
	if size <= 0 {
		size = c.pageSize
	}
	if size <= 0 {
		size = ep.PageSize
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(max(q.Page, 1)))
	query.Set("limit", strconv.Itoa(size))
	for k, v := range q.Filters {
		if k == "page" || k == "limit" || strings.TrimSpace(v) == "" {
			continue
		}
		query.Set(k, v)
	}

	doc, err := c.do(ctx, call{
		resource:  name,
		operation: "list",
		method:    http.MethodGet,
		path:      path,
		query:     query,
	})
	if err != nil {
		return resource.Collection{}, err
	}
	col := c.norms[name].collection(doc)
	if term := q.Search(); term != "" && len(ep.List.Search) > 0 {
		col.Rows = resource.MatchRows(col.Rows, term, ep.List.Search)
	}
	return col, nil
}

// Get fetches one row.
func (c *Client) Get(ctx context.Context, name, id string) (resource.Row, error) {
	ep, err := c.endpoint(name)
	if err != nil {
		return nil, err
	}
	if !ep.CanGet() {
		return nil, apperrors.Validationf("%s cannot be viewed individually", ep.Title)
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "id is required")
	}
	doc, err := c.do(ctx, call{
		resource:  name,
		operation: "get",
		method:    ep.Get.Method,
		path:      resource.ExpandPath(ep.Get.Path, id),
	})
	if err != nil {
		return nil, err
	}
	return unwrapRow(doc), nil
}

// Create submits a new row and returns what the server echoed back, which
// may be empty.
func (c *Client) Create(ctx context.Context, name string, p resource.Payload) (resource.Row, error) {
	ep, err := c.endpoint(name)
	if err != nil {
		return nil, err
	}
	if !ep.CanCreate() {
		return nil, apperrors.Validationf("%s cannot be created", ep.Title)
	}
	doc, err := c.mutate(ctx, name, "create", ep.Create, "", p)
	if err != nil {
		return nil, err
	}
	return unwrapRow(doc), nil
}

// Update sends p to the endpoint's update request or to p.Action.
func (c *Client) Update(ctx context.Context, name, id string, p resource.Payload) error {
	ep, err := c.endpoint(name)
	if err != nil {
		return err
	}
	spec, op := ep.Update, "update"
	if p.Action != "" {
		a, ok := ep.Action(p.Action)
		if !ok {
			return apperrors.Validationf("%s has no %q action", ep.Title, p.Action)
		}
		spec, op = a, "action."+p.Action
	}
	if !spec.Defined() {
		return apperrors.Validationf("%s cannot be edited", ep.Title)
	}
	_, err = c.mutate(ctx, name, op, spec, id, p)
	return err
}

// Remove deletes one row.
func (c *Client) Remove(ctx context.Context, name, id string) error {
	ep, err := c.endpoint(name)
	if err != nil {
		return err
	}
	if !ep.CanRemove() {
		return apperrors.Validationf("%s cannot be deleted", ep.Title)
	}
	_, err = c.mutate(ctx, name, "remove", ep.Remove, id, resource.Payload{})
	return err
}

func (c *Client) mutate(
	ctx context.Context,
	name, op string,
	spec resource.ActionSpec,
	id string,
	p resource.Payload,
) (any, error) {
	if spec.NeedsID() && strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "id is required")
	}
	if spec.IDParam != "" {
		p = p.Set(spec.IDParam, id)
	}
	body, err := encodeBody(spec.Encoding, p)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{
		resource:  name,
		operation: op,
		method:    spec.Method,
		path:      resource.ExpandPath(spec.Path, id),
		body:      body,
	})
}

func (c *Client) endpoint(name string) (resource.Endpoint, error) {
	ep, err := c.catalog.Lookup(name)
	if err != nil {
		return resource.Endpoint{}, apperrors.NotFoundf("unknown resource %q", name)
	}
	return ep, nil
}

type call struct {
	resource  string
	operation string
	method    string
	path      string
	query     url.Values
	body      *requestBody
}

// do issues one authenticated request and decodes the JSON response. No
// request is sent when the token provider has no credential.
func (c *Client) do(ctx context.Context, in call) (any, error) {
	token, ok := c.tokens.Token(ctx)
	if !ok {
		return nil, apperrors.Auth("No API credential is available. Please sign in.")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(ctx, err)
		}
	}

	req, err := c.newRequest(ctx, in)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build marketplace request")
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		err = transportError(ctx, err)
		c.observe(ctx, in, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := decodeResponse(resp)
	c.observe(ctx, in, resp.StatusCode, time.Since(start), err)
	return doc, err
}

func (c *Client) newRequest(ctx context.Context, in call) (*http.Request, error) {
	u := c.baseURL.JoinPath(in.path)
	if len(in.query) > 0 {
		u.RawQuery = in.query.Encode()
	}
	var req *http.Request
	var err error
	if in.body != nil {
		req, err = http.NewRequestWithContext(ctx, in.method, u.String(), in.body.reader)
		if err == nil && in.body.contentType != "" {
			req.Header.Set("Content-Type", in.body.contentType)
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, in.method, u.String(), nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) observe(ctx context.Context, in call, status int, d time.Duration, err error) {
	metrics.EmitUpstreamRequest(c.metrics, metrics.UpstreamMetric{
		Resource:  in.resource,
		Operation: in.operation,
		Status:    status,
		Duration:  d,
		Err:       err,
	})
	if err == nil {
		return
	}
	attrs := []any{
		"resource", in.resource,
		"operation", in.operation,
		"method", in.method,
		"path", in.path,
		"status", status,
		"duration_ms", d.Milliseconds(),
		"error", err,
	}
	switch {
	case apperrors.IsValidation(err), apperrors.IsAuth(err), apperrors.IsCanceled(err):
		c.logger.WarnContext(ctx, "marketplace request rejected", attrs...)
	default:
		c.logger.ErrorContext(ctx, "marketplace request failed", attrs...)
	}
}
