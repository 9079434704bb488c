package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactwatch/extension/internal/config"
)

type row struct {
	ID   uint
	Name string
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DatabaseConfig{
		Host: "db", Port: "5433", Username: "u", Password: "p", Database: "impact",
	})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=impact sslmode=disable", dsn)
}

func TestOpenSqlite_MemoryDatabasesArePrivate(t *testing.T) {
	a, err := OpenSqlite("")
	require.NoError(t, err)
	b, err := OpenSqlite("")
	require.NoError(t, err)

	require.NoError(t, a.AutoMigrate(&row{}))

	assert.True(t, a.Migrator().HasTable(&row{}))
	assert.False(t, b.Migrator().HasTable(&row{}))
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := OpenSqlite("")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&row{}))
	require.NoError(t, db.Create(&row{Name: "first"}).Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	// a second dump replaces the first
	require.NoError(t, db.Create(&row{Name: "second"}).Error)
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	_, err = os.Stat(path)
	require.NoError(t, err)

	disk, err := OpenSqlite(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, disk.Model(&row{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := OpenSqlite("")
	require.NoError(t, err)

	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}
