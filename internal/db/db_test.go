package db

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/faultskin/internal/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	defer monitoring.Quiet()()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestNewDB_MigratesToLatest(t *testing.T) {
	db := newTestDB(t)

	latest, err := LatestMigrationVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	for _, table := range []string{"fault_runs", "fault_skins", "fault_cells"} {
		assert.True(t, tableExists(t, db, table), table)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := newTestDB(t)
	defer monitoring.Quiet()()
	assert.NoError(t, db.MigrateUp(MigrationsFS()))
}

func TestMigrateDown(t *testing.T) {
	db := newTestDB(t)
	defer monitoring.Quiet()()

	require.NoError(t, db.MigrateDown(MigrationsFS()))
	version, _, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.True(t, tableExists(t, db, "fault_runs"))
	assert.False(t, tableExists(t, db, "fault_cells"))

	require.NoError(t, db.MigrateUp(MigrationsFS()))
	assert.True(t, tableExists(t, db, "fault_cells"))
}

func TestMigrateForce(t *testing.T) {
	db := newTestDB(t)
	defer monitoring.Quiet()()

	require.NoError(t, db.MigrateForce(MigrationsFS(), 1))
	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestOpenDB_AppliesPragmas(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "p.db"))
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestDSN(t *testing.T) {
	dsn := DSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "_pragma=foreign_keys%281%29")
}
