package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/bookcafe-client/internal/persistence/sqlite"
)

// NewSQLiteStore opens a migrated client store in a temporary directory. It
// is closed when the test ends.
func NewSQLiteStore(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	dsn := "file:" + filepath.Join(tb.TempDir(), "bookcafe.db")
	storage, err := sqlite.Open(dsn)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}
