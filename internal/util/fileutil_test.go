package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nested", "token.json")

	require.NoError(t, WriteFileAtomic(dst, []byte("one"), 0600))
	require.NoError(t, WriteFileAtomic(dst, []byte("two"), 0600))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.NoError(t, RemoveIfExists(path))
	assert.NoError(t, RemoveIfExists(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
