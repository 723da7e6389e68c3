package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSnapshotStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	ctx := context.Background()

	store, err := OpenSQLiteSnapshotStore(path, "")
	require.NoError(t, err)

	_, ok, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveSnapshot(ctx, []byte(`{"casinoBalance":1}`)))
	require.NoError(t, store.SaveSnapshot(ctx, []byte(`{"casinoBalance":2}`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteSnapshotStore(path, "")
	require.NoError(t, err)
	defer reopened.Close()

	data, ok, err := reopened.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"casinoBalance":2}`, string(data))
}

func TestSQLiteSnapshotStore_RequiresPath(t *testing.T) {
	_, err := OpenSQLiteSnapshotStore("  ", "")
	assert.Error(t, err)
}
