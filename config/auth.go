package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication. The provider access token
	// is forwarded to the marketplace API as the bearer credential.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses a static identity and API token (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"marketplace-admin"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"marketplace-admin"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
	// APITokenField names an extra token-response field holding the
	// marketplace bearer token. Empty means the OAuth access token is used.
	APITokenField string `env:"API_TOKEN_FIELD"`
}

// DevAuthConfig controls the mock identity used when AUTH_MODE=mock.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-admin"`
	Email  string   `env:"EMAIL"   envDefault:"admin@example.com"`
	Groups []string `env:"GROUPS"  envDefault:"admins"            envSeparator:";"`
	// APIToken is handed to the marketplace API as the bearer credential.
	APIToken string `env:"API_TOKEN"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the identity provider group granting full admin access.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"admins"`

	// UserGroup is the identity provider group granting read-only access.
	UserGroup string `env:"USER_GROUP" envDefault:"support"`

	// SessionTTL bounds sessions whose provider token carries no expiry.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.AdminGroup = strings.TrimSpace(a.AdminGroup)
	a.UserGroup = strings.TrimSpace(a.UserGroup)
	a.DevAuth.APIToken = strings.TrimSpace(a.DevAuth.APIToken)
	if a.SessionTTL <= 0 {
		a.SessionTTL = 8 * time.Hour
	}
}
