package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/migrate"
	"github.com/urbanmart/marketplace-admin/internal/testutil"
)

func TestAuditRepo_RecordAndList(t *testing.T) {
	db := testutil.StartPostgres(t)
	ctx := context.Background()
	// Applying twice must be a no-op.
	require.NoError(t, migrate.Run(ctx, db))

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := NewAuditRepo(db, WithClock(func() time.Time { return now }))

	for i, res := range []string{"orders", "vendors", "orders", "categories", "orders"} {
		id := string(rune('a' + i))
		require.NoError(t, repo.Record(ctx, model.AuditEntry{
			Actor:    "ops@example.com",
			Resource: res,
			Action:   "delete",
			TargetID: &id,
			Outcome:  model.AuditOutcomeSuccess,
		}))
		now = now.Add(time.Minute)
	}
	require.NoError(t, repo.Record(ctx, model.AuditEntry{
		Actor:    "cli",
		Resource: "settings",
		Action:   "update",
		Outcome:  model.AuditOutcomeFailure,
		Message:  "GST cannot exceed 100%",
	}))

	page, err := repo.List(ctx, model.AuditListOptions{Page: 1, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Entries, 4)
	assert.Equal(t, "settings", page.Entries[0].Resource)
	assert.Nil(t, page.Entries[0].TargetID)
	assert.Equal(t, model.AuditOutcomeFailure, page.Entries[0].Outcome)
	assert.NotEmpty(t, page.Entries[0].ID)

	orders := "orders"
	page, err = repo.List(ctx, model.AuditListOptions{Page: 1, Resource: &orders})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Entries, 3)
	assert.Equal(t, "e", *page.Entries[0].TargetID)

	actor := "OPS@"
	page, err = repo.List(ctx, model.AuditListOptions{Page: 9, Actor: &actor})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 1, page.TotalPages)
}

func TestAuditRepo_DeleteOlderThan(t *testing.T) {
	db := testutil.StartPostgres(t)
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewAuditRepo(db, WithClock(func() time.Time { return now }))
	for range 5 {
		require.NoError(t, repo.Record(ctx, model.AuditEntry{
			Actor: "ops@example.com", Resource: "orders", Action: "status", Outcome: model.AuditOutcomeSuccess,
		}))
		now = now.Add(24 * time.Hour)
	}

	// Clock is now Jan 6; entries from Jan 1..3 are older than 2.5 days.
	n, err := repo.DeleteOlderThan(ctx, 60*time.Hour, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteOlderThan(ctx, 60*time.Hour, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteOlderThan(ctx, 60*time.Hour, 2)
	require.NoError(t, err)
	assert.Zero(t, n)

	page, err := repo.List(ctx, model.AuditListOptions{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 2)
}
