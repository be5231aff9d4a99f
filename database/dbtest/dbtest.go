// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"farmeasy/database"
)

// NewTestDB creates a migrated database in a temp directory. It is closed
// when the test ends.
func NewTestDB(t testing.TB, name string) *database.DB {
	t.Helper()
	profile := database.ProfileStandard
	if name == database.SchemaLedger {
		profile = database.ProfileLedger
	}
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), fmt.Sprintf("test_%s.db", name)),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database %s: %v", name, err)
		}
	})
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database %s: %v", name, err)
	}
	return db
}

