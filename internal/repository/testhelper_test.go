package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hitoshi/scrimbot/internal/database"
)

// openTestDB はマイグレーション済みの一時SQLiteデータベースを返す。
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open("sqlite3://" + filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.MigrateDB(db, database.DriverSQLite))
	return db
}
