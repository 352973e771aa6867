package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/dbms/sqlite"
)

func TestMigrator(t *testing.T) {
	driver, err := sqlite.Open(filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	defer driver.Close()
	db := driver.DB()

	m := sqlite.NewMigrator()
	m.AddMigration(sqlite.Migration{
		Up:   "CREATE TABLE `a` (`id` INTEGER PRIMARY KEY)",
		Down: "DROP TABLE `a`",
	})
	m.AddMigration(sqlite.Migration{
		Up:   "CREATE TABLE `b` (`id` INTEGER PRIMARY KEY)",
		Down: "DROP TABLE `b`",
	})

	version, err := m.Version(db)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	require.NoError(t, m.Update(db))
	version, err = m.Version(db)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	_, err = db.Exec("INSERT INTO `b` (`id`) VALUES (1)")
	require.NoError(t, err)

	// Already up to date.
	require.NoError(t, m.Update(db))

	require.NoError(t, m.MigrateToVersion(db, 1))
	version, err = m.Version(db)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	_, err = db.Exec("SELECT * FROM `b`")
	assert.Error(t, err)
	_, err = db.Exec("SELECT * FROM `a`")
	assert.NoError(t, err)

	err = m.MigrateToVersion(db, 3)
	assert.ErrorIs(t, err, coffee.ErrConfiguration)
}

func TestFailedMigrationLeavesVersion(t *testing.T) {
	driver, err := sqlite.Open(filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	defer driver.Close()
	db := driver.DB()

	m := sqlite.NewMigratorWithMigrations([]sqlite.Migration{
		{Up: "CREATE TABLE `a` (`id` INTEGER PRIMARY KEY)"},
		{Up: "CREATE TABLE broken ("},
	}).SetMigrationTabName("versions")

	require.Error(t, m.Update(db))
	version, err := m.Version(db)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
	_, err = db.Exec("SELECT * FROM `a`")
	assert.Error(t, err, "the first step belongs to the rolled back transaction")

	m = sqlite.NewMigratorWithMigrations([]sqlite.Migration{{Up: "CREATE TABLE `a` (`id` INTEGER PRIMARY KEY)"}})
	require.NoError(t, m.Update(db))
	err = m.MigrateToVersion(db, 0)
	assert.ErrorIs(t, err, coffee.ErrConfiguration, "no down query")
}
