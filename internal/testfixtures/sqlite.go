package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bjax13/CookbookClub/internal/persistence/sqlite"
)

// NewSQLiteStore opens a migrated store in a temporary directory and closes
// it when the test ends.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "state.sqlite")
	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
