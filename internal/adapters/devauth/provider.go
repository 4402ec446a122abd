// Package devauth signs in a fixed identity for local development, skipping
// the OIDC round trip. The configured marketplace API token becomes the
// session's bearer credential.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

const (
	defaultSessionDuration = 8 * time.Hour
	stateBytes             = 18
)

// Config describes the development identity.
type Config struct {
	UserID string
	Email  string
	Groups []string
	// APIToken is sent as the bearer credential to the marketplace API.
	APIToken        string
	SessionDuration time.Duration
	Now             func() time.Time
}

// Provider implements ports.AuthProvider without an identity provider.
type Provider struct {
	cfg Config
	now func() time.Time
}

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: user id is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: email is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	cfg.Groups = append([]string(nil), cfg.Groups...)
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{cfg: cfg, now: now}, nil
}

// Begin sends the browser straight to our own callback with fresh state
// and nonce values.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity; state and nonce were already
// checked by the callback handler.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		UserID:      p.cfg.UserID,
		Email:       p.cfg.Email,
		Groups:      append([]string(nil), p.cfg.Groups...),
		ExpiresAt:   p.now().Add(p.cfg.SessionDuration),
		AccessToken: p.cfg.APIToken,
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
