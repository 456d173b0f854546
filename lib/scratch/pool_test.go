package scratch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateAndReleaseAll(t *testing.T) {
	parent := t.TempDir()
	pool := NewPool(parent)

	first, err := pool.Allocate()
	require.NoError(t, err)
	second, err := pool.Allocate()
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.DirExists(t, first)
	require.DirExists(t, second)
	require.Equal(t, []string{first, second}, pool.Dirs())

	// Release removes contents recursively, not just empty roots.
	require.NoError(t, os.WriteFile(filepath.Join(first, "upper"), []byte("x"), 0644))

	require.NoError(t, pool.ReleaseAll(context.Background()))
	require.NoDirExists(t, first)
	require.NoDirExists(t, second)
	require.Empty(t, pool.Dirs())
}

func TestReleaseAllToleratesAlreadyGone(t *testing.T) {
	pool := NewPool(t.TempDir())
	dir, err := pool.Allocate()
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	require.NoError(t, pool.ReleaseAll(context.Background()))
	require.Empty(t, pool.Dirs())
}

func TestAllocateMissingParent(t *testing.T) {
	pool := NewPool(filepath.Join(t.TempDir(), "nope"))
	_, err := pool.Allocate()
	require.Error(t, err)
	require.Empty(t, pool.Dirs())
}
