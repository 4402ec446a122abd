package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
	"github.com/urbanmart/marketplace-admin/internal/testutil"
)

func newTestStore(t *testing.T, now func() time.Time) (*SessionStore, testutil.RedisFixture) {
	t.Helper()
	fx := testutil.SetupTestRedis(t)
	return NewSessionStore(SessionStoreOptions{Client: fx.Client, Prefix: fx.Prefix, Now: now}), fx
}

func adminSession(id string, expires time.Time) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UserID:    "admin-1",
		Email:     "ada@example.com",
		Role:      domainauth.RoleAdmin,
		ExpiresAt: expires,
		APIToken:  "bearer-abc",
	}
}

func TestSessionStore_RoundTripKeepsAPIToken(t *testing.T) {
	store, fx := newTestStore(t, nil)
	ctx := context.Background()

	sess := adminSession("s-1", time.Now().Add(30*time.Minute))
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "bearer-abc", got.APIToken)
	assert.Equal(t, domainauth.RoleAdmin, got.Role)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)

	ttl := fx.Client.TTL(ctx, fx.Prefix+"s-1").Val()
	assert.Greater(t, ttl, 29*time.Minute)
	assert.LessOrEqual(t, ttl, 30*time.Minute)
}

func TestSessionStore_Delete(t *testing.T) {
	store, fx := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, adminSession("s-del", time.Now().Add(time.Hour))))
	require.NoError(t, store.Delete(ctx, "s-del"))
	require.NoError(t, store.Delete(ctx, "s-del"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err := store.Get(ctx, "s-del")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, fx.Client.Exists(ctx, fx.Prefix+"s-del").Val())
}

func TestSessionStore_ExpiredByClockIsRemoved(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store, fx := newTestStore(t, clock)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, adminSession("s-old", now.Add(10*time.Minute))))

	now = now.Add(11 * time.Minute)
	_, err := store.Get(ctx, "s-old")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, fx.Client.Exists(ctx, fx.Prefix+"s-old").Val())
}

func TestSessionStore_SaveRejects(t *testing.T) {
	store, _ := newTestStore(t, nil)
	ctx := context.Background()

	err := store.Save(ctx, adminSession("", time.Now().Add(time.Hour)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")

	err = store.Save(ctx, adminSession("s-exp", time.Now().Add(-time.Minute)))
	require.ErrorIs(t, err, ErrExpired)

	_, err = store.Get(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewSessionStore_DefaultPrefix(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})
	assert.Equal(t, DefaultKeyPrefix+"abc", store.key("abc"))
}
