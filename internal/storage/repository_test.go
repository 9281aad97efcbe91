package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"finboard/internal/storage"
	"finboard/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finboard.db"))
	require.NoError(t, err)
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storagetest.Run(t, newSQLite)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "finboard.db")

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(context.Background()))
	require.NoError(t, repo.Close())

	require.NoError(t, storage.RunMigrations(path))
	version, dirty, err := storage.SchemaVersion(path)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}
