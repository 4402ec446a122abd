package config

import (
	"strings"
	"time"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultWriteTimeout = 30 * time.Second
	minGzipLevel        = 1
	maxGzipLevel        = 9
)

// HTTPConfig configures the console's HTTP listener.
type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain scopes the session and CSRF cookies. Empty means the
	// request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// WriteTimeout bounds a whole response. A page render waits on the
	// marketplace API, so it is raised to cover MARKETPLACE_TIMEOUT.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`

	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`
	CompressionLevel   int  `env:"HTTP_COMPRESSION_LEVEL"   envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr = strings.TrimSpace(h.Addr); h.Addr == "" {
		h.Addr = defaultHTTPAddr
	}
	h.CookieDomain = strings.TrimSpace(h.CookieDomain)
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = defaultWriteTimeout
	}
	h.CompressionLevel = min(max(h.CompressionLevel, minGzipLevel), maxGzipLevel)
}

// coverUpstream makes sure a response can outlive one upstream request.
func (h *HTTPConfig) coverUpstream(upstream time.Duration) {
	if floor := upstream + 5*time.Second; h.WriteTimeout < floor {
		h.WriteTimeout = floor
	}
}
