// Package testutil provides shared fixtures for integration tests: a Redis
// client scoped to a per-test key prefix, a migrated Postgres container, and
// builders for marketplace rows.
package testutil

import (
	"os"
	"strings"
	"time"
)

// TestingTB covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
}

// getEnvOrDefault returns the environment variable value or def.
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envBool parses common truthy values.
func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// requireInfra turns "not available" skips into failures in CI.
func requireInfra(kind string) bool {
	return envBool("TEST_REQUIRE_"+kind) || envBool("TEST_REQUIRE_INFRA")
}

// skipOrFail skips the test unless the infrastructure kind is required.
func skipOrFail(t TestingTB, kind, format string, args ...any) {
	t.Helper()
	if requireInfra(kind) {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

// TestTime is the reference instant used by fixtures.
func TestTime() time.Time {
	return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
}
