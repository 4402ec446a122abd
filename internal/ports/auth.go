package ports

import (
	"context"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
)

// AuthProvider runs the console sign-in against an identity provider. The
// identity it returns carries the marketplace API credential.
type AuthProvider interface {
	// Begin returns the URL to send the browser to, plus the state and nonce
	// the callback must echo back.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)
	// Exchange trades the callback code for a verified identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// BeginInput is what Begin needs to start a sign-in.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput is the callback payload plus the nonce issued by Begin.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore keeps console sessions server-side so the API credential
// never reaches the browser.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper turns IdP groups into a console role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
