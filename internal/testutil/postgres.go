package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	// Registers the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/urbanmart/marketplace-admin/internal/migrate"
)

const postgresImage = "postgres:16-alpine"

// StartPostgres runs a throwaway Postgres container, applies the audit
// store migrations and returns a connection. Docker being unavailable
// skips the test unless TEST_REQUIRE_DB is set; -short always skips.
func StartPostgres(t TestingTB) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		getEnvOrDefault("TEST_POSTGRES_IMAGE", postgresImage),
		postgres.WithDatabase("marketplace_admin"),
		postgres.WithUsername("admin"),
		postgres.WithPassword("admin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		skipOrFail(t, "DB", "postgres container unavailable: %v", err)
		return nil
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("warning: terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: close postgres: %v", err)
		}
	})

	if err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
