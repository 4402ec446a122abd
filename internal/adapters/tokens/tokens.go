// Package tokens provides the bearer credential sources used by the
// marketplace client.
package tokens

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
)

// Session reads the API token of the session attached to the request context.
type Session struct{}

// Token implements ports.TokenProvider.
func (Session) Token(ctx context.Context) (string, bool) {
	sess, ok := domainauth.SessionFrom(ctx)
	if !ok {
		return "", false
	}
	tok := strings.TrimSpace(sess.APIToken)
	return tok, tok != ""
}

// Static always returns the same token. An empty token means absent.
type Static string

// Token implements ports.TokenProvider.
func (s Static) Token(context.Context) (string, bool) {
	tok := strings.TrimSpace(string(s))
	return tok, tok != ""
}

// Provider is the subset of ports.TokenProvider the guard wraps.
type Provider interface {
	Token(ctx context.Context) (string, bool)
}

// ExpiryGuard hides JWT credentials whose exp claim has passed, so no request
// doomed to a 401 is sent. Opaque tokens pass through unchanged.
type ExpiryGuard struct {
	Next Provider
	// Leeway is subtracted from exp before comparing. Zero means none.
	Leeway time.Duration
	Now    func() time.Time

	parser *jwt.Parser
}

// NewExpiryGuard wraps next.
func NewExpiryGuard(next Provider, leeway time.Duration) *ExpiryGuard {
	return &ExpiryGuard{Next: next, Leeway: leeway, Now: time.Now, parser: jwt.NewParser()}
}

// Token implements ports.TokenProvider.
func (g *ExpiryGuard) Token(ctx context.Context) (string, bool) {
	tok, ok := g.Next.Token(ctx)
	if !ok {
		return "", false
	}
	if exp, found := g.expiry(tok); found && !g.now().Before(exp.Add(-g.Leeway)) {
		return "", false
	}
	return tok, true
}

// expiry reads exp without verifying the signature; the API remains the
// authority on validity.
func (g *ExpiryGuard) expiry(tok string) (time.Time, bool) {
	if strings.Count(tok, ".") != 2 {
		return time.Time{}, false
	}
	p := g.parser
	if p == nil {
		p = jwt.NewParser()
	}
	claims := jwt.MapClaims{}
	if _, _, err := p.ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (g *ExpiryGuard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}
