package turso_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/turso"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/migrate"
)

// testDB opens a migrated database in a per-test temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := turso.NewDB(config.Database{
		URL: "file:" + filepath.Join(t.TempDir(), "nested", "test.db"),
	})
	require.NoError(t, err, "open database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrate.RunAll(context.Background(), db), "run migrations")
	return db
}

func float64Ptr(f float64) *float64 {
	return &f
}
