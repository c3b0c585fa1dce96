package db_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sathursan-S/Ticketer/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh sqlite database, or the postgres database from
// POSTGRES_URL when it is set.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	driver, dsn := db.DriverSQLite, filepath.Join(t.TempDir(), "events.db")
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		driver, dsn = db.DriverPostgres, url
	}

	conn, err := db.Open(driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, conn.Close())
	})

	require.NoError(t, db.InitialiseDB(context.Background(), conn))

	return conn
}
