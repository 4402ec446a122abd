// Package oidc signs admins in through an OpenID Connect provider. The
// access token issued at login is what the console later presents to the
// marketplace API.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

const (
	wellKnownSuffix    = "/.well-known/openid-configuration"
	stateBytes         = 24
	defaultTokenLife   = time.Hour
	defaultHTTPTimeout = 30 * time.Second
)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL may be the issuer or its well-known configuration URL.
	DiscoveryURL string
	// APITokenField selects an extra token-response field as the
	// marketplace credential instead of the access token.
	APITokenField string
	HTTPClient    *http.Client
	Now           func() time.Time
}

// Provider implements ports.AuthProvider with go-oidc and oauth2.
type Provider struct {
	oauth      *oauth2.Config
	op         *gooidc.Provider
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client
	tokenField string
	now        func() time.Time
}

// NewProvider performs discovery against the issuer and returns a Provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	var missing []string
	for name, v := range map[string]string{
		"client ID":     cfg.ClientID,
		"client secret": cfg.ClientSecret,
		"redirect URL":  cfg.RedirectURL,
		"discovery URL": cfg.DiscoveryURL,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("oidc: %s required", strings.Join(missing, ", "))
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultHTTPTimeout}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ctx := gooidc.ClientContext(context.Background(), hc)
	op, err := gooidc.NewProvider(ctx, issuerFrom(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		op:         op,
		verifier:   op.Verifier(&gooidc.Config{ClientID: cfg.ClientID, Now: now}),
		httpClient: hc,
		tokenField: cfg.APITokenField,
		now:        now,
	}, nil
}

func issuerFrom(discoveryURL string) string {
	u := strings.TrimRight(strings.TrimSpace(discoveryURL), "/")
	return strings.TrimSuffix(u, wellKnownSuffix)
}

// Begin builds the authorization URL with fresh state and nonce values.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL := p.oauth.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange trades the code for tokens, verifies the ID token when the
// openid scope was requested, and fills gaps from the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	if slices.Contains(p.oauth.Scopes, gooidc.ScopeOpenID) {
		if c, err = p.verifyIDToken(ctx, tok, in.Nonce); err != nil {
			return domainauth.Identity{}, err
		}
	}
	if c.Subject == "" || c.Email == "" {
		ui, err := p.op.UserInfo(ctx, oauth2.StaticTokenSource(tok))
		if err != nil {
			return domainauth.Identity{}, fmt.Errorf("fetch user info: %w", err)
		}
		var extra claims
		if err := ui.Claims(&extra); err != nil {
			return domainauth.Identity{}, fmt.Errorf("decode user info: %w", err)
		}
		c.merge(extra)
	}
	if c.Subject == "" {
		return domainauth.Identity{}, errors.New("identity has no subject")
	}

	apiToken, err := p.apiToken(tok)
	if err != nil {
		return domainauth.Identity{}, err
	}
	expires := p.now().Add(defaultTokenLife)
	if !tok.Expiry.IsZero() {
		expires = tok.Expiry
	}

	return domainauth.Identity{
		UserID:      c.Subject,
		FirstName:   c.GivenName,
		LastName:    c.FamilyName,
		Email:       c.Email,
		Groups:      c.Groups,
		ExpiresAt:   expires,
		AccessToken: apiToken,
	}, nil
}

func (p *Provider) verifyIDToken(ctx context.Context, tok *oauth2.Token, nonce string) (claims, error) {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return claims{}, errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("id_token nonce mismatch")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	return c, nil
}

func (p *Provider) apiToken(tok *oauth2.Token) (string, error) {
	if p.tokenField == "" {
		return tok.AccessToken, nil
	}
	v, ok := tok.Extra(p.tokenField).(string)
	if !ok || v == "" {
		return "", fmt.Errorf("token response has no %q field", p.tokenField)
	}
	return v, nil
}

// claims are the standard OIDC profile claims plus a groups list.
type claims struct {
	Subject    string   `json:"sub"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Groups     []string `json:"groups"`
}

// merge fills empty fields from other.
func (c *claims) merge(other claims) {
	if c.Subject == "" {
		c.Subject = other.Subject
	}
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.GivenName == "" {
		c.GivenName = other.GivenName
	}
	if c.FamilyName == "" {
		c.FamilyName = other.FamilyName
	}
	if len(c.Groups) == 0 {
		c.Groups = other.Groups
	}
}

func randomToken() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
