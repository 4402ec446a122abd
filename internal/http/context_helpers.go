package httpx

import (
	"context"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
)

// SetSessionInContext returns a child context that carries the given session.
// The session is stored with domainauth.WithSession so the marketplace token
// provider reads the same value the templates do. A nil session returns ctx unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return domainauth.WithSession(ctx, *session)
}

// GetSessionFromContext retrieves the session from the request context.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := domainauth.SessionFrom(ctx); ok {
		return &s
	}
	return nil
}
