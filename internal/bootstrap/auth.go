package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/urbanmart/marketplace-admin/config"
	"github.com/urbanmart/marketplace-admin/internal/adapters/authroles"
	"github.com/urbanmart/marketplace-admin/internal/adapters/devauth"
	"github.com/urbanmart/marketplace-admin/internal/adapters/oidc"
	redisadapter "github.com/urbanmart/marketplace-admin/internal/adapters/redis"
	"github.com/urbanmart/marketplace-admin/internal/ports"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid; the
// console then has no way to obtain a marketplace credential.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisClient == nil {
		logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	var (
		prov ports.AuthProvider
		err  error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err = devauth.NewProvider(devauth.Config{
			UserID:          cfg.Auth.DevAuth.UserID,
			Email:           cfg.Auth.DevAuth.Email,
			Groups:          cfg.Auth.DevAuth.Groups,
			APIToken:        cfg.Auth.DevAuth.APIToken,
			SessionDuration: cfg.Auth.SessionTTL,
		})
		if err == nil && cfg.Auth.DevAuth.APIToken == "" {
			logger.Warn("dev auth has no DEV_AUTH_API_TOKEN; lists will stay idle")
		}
	case config.AuthModeOAuth:
		prov, err = buildOIDCProvider(cfg.Auth.OAuth, logger)
	default:
		logger.Warn("unknown auth mode; auth disabled", "mode", cfg.Auth.Mode)
		return nil
	}
	if err != nil {
		logger.Warn("failed to create auth provider, auth disabled", "mode", cfg.Auth.Mode, "error", err)
		return nil
	}
	if prov == nil {
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:   prov,
		Sessions:   redisadapter.NewSessionStore(redisadapter.SessionStoreOptions{Client: cfg.RedisClient}),
		Roles:      authroles.StaticRoleMapper{AdminGroup: cfg.Auth.AdminGroup, UserGroup: cfg.Auth.UserGroup},
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     logger,
	})
}

// buildOIDCProvider only enables OAuth when it is fully configured. A nil
// provider with a nil error means "not configured".
//
//nolint:ireturn,nilnil // the caller switches over provider implementations.
func buildOIDCProvider(oauth config.OAuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
			"discovery_url_empty", oauth.DiscoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
			"client_secret_empty", oauth.ClientSecret == "",
		)
		return nil, nil
	}
	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:      oauth.ClientID,
		ClientSecret:  oauth.ClientSecret,
		RedirectURL:   oauth.RedirectURL,
		Scope:         oauth.Scope,
		DiscoveryURL:  oauth.DiscoveryURL,
		APITokenField: oauth.APITokenField,
	})
	if err != nil {
		return nil, err
	}
	return prov, nil
}
