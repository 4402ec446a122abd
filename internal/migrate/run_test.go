package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmart/marketplace-admin/internal/migrate"
	"github.com/urbanmart/marketplace-admin/internal/testutil"
)

func TestRun_IsIdempotent(t *testing.T) {
	// StartPostgres has already applied everything once.
	db := testutil.StartPostgres(t)
	ctx := context.Background()

	require.NoError(t, migrate.Run(ctx, db))

	status, err := migrate.Status(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, status)
	assert.Equal(t, "0001_audit_entries", status[0].Version)
	for _, m := range status {
		assert.True(t, m.Applied, m.Version)
	}

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, len(status), n)
}

func TestRun_ConcurrentCallersApplyOnce(t *testing.T) {
	db := testutil.StartPostgres(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `DROP TABLE audit_entries; DELETE FROM schema_migrations`)
	require.NoError(t, err)

	errs := make(chan error, 3)
	for range 3 {
		go func() { errs <- migrate.Run(ctx, db) }()
	}
	for range 3 {
		require.NoError(t, <-errs)
	}

	status, err := migrate.Status(ctx, db)
	require.NoError(t, err)
	for _, m := range status {
		assert.True(t, m.Applied, m.Version)
	}
}
