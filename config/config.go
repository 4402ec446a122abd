package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and session configuration
//   - database.go: Audit database and Redis configuration
//   - http.go: HTTP server configuration
//   - marketplace.go: Upstream marketplace API configuration
//   - retention.go: Audit trail retention
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (hot reloading, detailed errors).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Storage configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Upstream marketplace API configuration
	Marketplace MarketplaceConfig `envPrefix:"MARKETPLACE_"`

	// Audit trail retention
	AuditRetention AuditRetentionConfig `envPrefix:"AUDIT_RETENTION_"`

	// Lookup cache for form dropdown options
	Lookups LookupCacheConfig `envPrefix:"LOOKUP_CACHE_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Marketplace.Sanitize()
	c.Lookups.Sanitize()
	c.AuditRetention.Sanitize()
	c.Observability.Sanitize()
	c.HTTP.coverUpstream(c.Marketplace.Timeout)

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
