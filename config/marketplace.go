package config

import (
	"strings"
	"time"
)

const (
	defaultMarketplaceTimeout = 15 * time.Second
	defaultPageSize           = 10
	maxPageSize               = 100
)

// MarketplaceConfig describes how the console reaches the marketplace REST API.
type MarketplaceConfig struct {
	// BaseURL is the API root, e.g. "https://api.example.com".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:4000"`

	// Timeout bounds every upstream request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// PageSize is the default `limit` sent to list endpoints.
	PageSize int `env:"PAGE_SIZE" envDefault:"10"`

	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"RATE_BURST" envDefault:"10"`

	// APIToken is the fixed credential used by adminctl. The web console never
	// reads it; browser sessions carry their own token.
	APIToken string `env:"API_TOKEN"`

	// CatalogFile overrides the embedded resource catalog when set.
	CatalogFile string `env:"CATALOG_FILE"`
}

// Sanitize applies guardrails to marketplace configuration values.
func (c *MarketplaceConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.CatalogFile = strings.TrimSpace(c.CatalogFile)
	c.APIToken = strings.TrimSpace(c.APIToken)
	if c.Timeout <= 0 {
		c.Timeout = defaultMarketplaceTimeout
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.PageSize > maxPageSize {
		c.PageSize = maxPageSize
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.RateBurst < 1 {
		c.RateBurst = 1
	}
}

// LookupCacheConfig sizes the in-memory cache for dropdown lookups.
type LookupCacheConfig struct {
	Size int           `env:"SIZE" envDefault:"256"`
	TTL  time.Duration `env:"TTL"  envDefault:"1m"`
}

// Sanitize applies guardrails to lookup cache values.
func (c *LookupCacheConfig) Sanitize() {
	if c.Size <= 0 {
		c.Size = 256
	}
	if c.TTL <= 0 {
		c.TTL = time.Minute
	}
}
