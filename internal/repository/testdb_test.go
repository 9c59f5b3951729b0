package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roadcare/roadcare-backend-go/internal/database"
)

// openTestDB opens a migrated in-memory database. Single connection:
// every sqlite :memory: connection is its own database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, database.NewMigrationManager(db).RunMigrations())

	t.Cleanup(func() { db.Close() })
	return db
}
