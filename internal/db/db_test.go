package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratedCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	conn, err := OpenMigrated(path)
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"users", "games", "daily_results"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	require.NoError(t, Migrate(path))
	require.NoError(t, Migrate(path))
}

func TestForeignKeysEnabled(t *testing.T) {
	conn, err := OpenMigrated(filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer conn.Close()

	var on int
	require.NoError(t, conn.QueryRow(`PRAGMA foreign_keys`).Scan(&on))
	assert.Equal(t, 1, on)
}
