package testhelpers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"hospitalhub/internal/tenancy"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool *pgxpool.Pool
}

// SetupTestDB connects to TEST_DATABASE_URL, skipping the test when it is unset
// or when running with -short. The pool is closed after the test's other
// cleanups have run.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("Failed to reach test database: %v", err)
	}

	t.Cleanup(pool.Close)

	return &TestDB{Pool: pool}
}

// SetupTestTenant provisions a throwaway tenant schema and drops it when the
// test finishes.
func SetupTestTenant(t *testing.T, db *TestDB) tenancy.Database {
	t.Helper()

	code := "test-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	tenant, err := tenancy.ForTenant(code)
	if err != nil {
		t.Fatalf("Failed to route test tenant: %v", err)
	}

	ctx := context.Background()
	if err := tenancy.NewProvisioner(db.Pool, zerolog.Nop()).Provision(ctx, tenant); err != nil {
		t.Fatalf("Failed to provision test tenant: %v", err)
	}

	t.Cleanup(func() {
		query := fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", tenant.QuotedSchema())
		if _, err := db.Pool.Exec(context.Background(), query); err != nil {
			t.Logf("Failed to drop test tenant %s: %v", tenant, err)
		}
	})

	return tenant
}
