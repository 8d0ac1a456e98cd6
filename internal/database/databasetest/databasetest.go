// Package databasetest provides a migrated PostgreSQL database for
// integration tests. PRESSROOM_TEST_DSN selects an existing server;
// otherwise a throwaway container is started once per test binary.
// Tests are skipped when neither is available.
package databasetest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"pressroom/internal/database"
)

var (
	once   sync.Once
	dsn    string
	dsnErr error
)

// DSN returns a connection string for the test database, starting a
// container on first use when PRESSROOM_TEST_DSN is not set.
func DSN(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("PRESSROOM_TEST_DSN"); v != "" {
		return v
	}
	if testing.Short() {
		t.Skip("skipping: PRESSROOM_TEST_DSN not set in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("pressroom"),
			postgres.WithUsername("pressroom"),
			postgres.WithPassword("pressroom"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			dsnErr = err
			return
		}
		dsn, dsnErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	if dsnErr != nil {
		t.Skipf("skipping: PostgreSQL container not available: %v", dsnErr)
	}
	return dsn
}

// Open connects to the test database and applies migrations. The pool is
// closed when the test finishes.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(DSN(t))
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// Reset empties every application table.
func Reset(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if _, err := db.Exec(`TRUNCATE media, posts, categories, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
}
