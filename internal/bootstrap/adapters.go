package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urbanmart/marketplace-admin/config"
	"github.com/urbanmart/marketplace-admin/internal/adapters/marketplace"
	"github.com/urbanmart/marketplace-admin/internal/adapters/tokens"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
)

// tokenLeeway treats a credential as expired slightly before its exp claim.
const tokenLeeway = 30 * time.Second

// MarketplaceAdapters bundles the upstream-facing adapters shared by services.
type MarketplaceAdapters struct {
	Catalog *resource.Catalog
	Client  *marketplace.Client
	Tokens  *tokens.ExpiryGuard
	Metrics *statsd.Client
}

// LoadCatalog reads the configured catalog file, falling back to the
// embedded catalog when none is set.
func LoadCatalog(cfg config.MarketplaceConfig) (*resource.Catalog, error) {
	if cfg.CatalogFile == "" {
		return resource.DefaultCatalog()
	}
	cat, err := resource.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogFile, err)
	}
	return cat, nil
}

// BuildMetrics returns a statsd client. Dial failures are logged and
// produce a nil client; metrics are never required for the console to run.
func BuildMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	logger.Info("statsd metrics enabled", "address", cfg.StatsdAddress, "prefix", cfg.Prefix)
	return client
}

// BuildMarketplaceAdapters wires the catalog, session token provider and
// REST client together for the web console.
func BuildMarketplaceAdapters(cfg *config.AppConfig, logger *slog.Logger) (*MarketplaceAdapters, error) {
	return buildMarketplaceAdapters(cfg, logger, tokens.Session{})
}

// BuildStaticMarketplaceAdapters is BuildMarketplaceAdapters for callers with
// no browser session; every request uses MARKETPLACE_API_TOKEN.
func BuildStaticMarketplaceAdapters(cfg *config.AppConfig, logger *slog.Logger) (*MarketplaceAdapters, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	return buildMarketplaceAdapters(cfg, logger, tokens.Static(cfg.Marketplace.APIToken))
}

func buildMarketplaceAdapters(cfg *config.AppConfig, logger *slog.Logger, source tokens.Provider) (*MarketplaceAdapters, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := LoadCatalog(cfg.Marketplace)
	if err != nil {
		return nil, err
	}

	metricsClient := BuildMetrics(cfg.Observability.Metrics, logger)
	guard := tokens.NewExpiryGuard(source, tokenLeeway)

	client, err := marketplace.NewClient(marketplace.Config{
		BaseURL:   cfg.Marketplace.BaseURL,
		Catalog:   cat,
		Tokens:    guard,
		PageSize:  cfg.Marketplace.PageSize,
		Timeout:   cfg.Marketplace.Timeout,
		RateLimit: cfg.Marketplace.RateLimit,
		RateBurst: cfg.Marketplace.RateBurst,
		Client:    marketplace.NewHTTPClient(cfg.Marketplace.Timeout),
		Metrics:   metricsSink(metricsClient),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create marketplace client: %w", err)
	}

	return &MarketplaceAdapters{
		Catalog: cat,
		Client:  client,
		Tokens:  guard,
		Metrics: metricsClient,
	}, nil
}

// metricsSink keeps a nil *statsd.Client from becoming a non-nil interface.
//
//nolint:ireturn // services depend on the Sink interface.
func metricsSink(c *statsd.Client) statsd.Sink {
	if c == nil {
		return nil
	}
	return c
}
