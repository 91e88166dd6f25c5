// Package testutil builds throwaway local stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/superfume-sync/internal/schema"
	"github.com/fekuna/superfume-sync/pkg/database"
)

// NewDB opens a migrated SQLite file under t.TempDir and closes it on cleanup.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLite(&database.Config{
		Path: filepath.Join(t.TempDir(), "superfume_test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := schema.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
