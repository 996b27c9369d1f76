package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// SetupTestDB opens a migrated database in a temp dir. It is closed when
// the test ends.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "shelf.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}
