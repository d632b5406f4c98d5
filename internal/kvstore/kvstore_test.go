package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadWriteDelete(t *testing.T) {
	s := NewMemory()

	_, ok, err := s.Read("missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write("k", "v"))
	v, ok, err := s.Read("k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Delete("k"))
	_, ok, _ = s.Read("k")
	assert.False(t, ok)
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := NewFile(path)
	require.NoError(t, err)

	_, ok, err := s.Read(CartKey)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(CartKey, `[{"id":1,"quantity":2}]`))
	require.NoError(t, s.Write(InstallPromptDismissKey, "true"))

	// Повторное открытие читает записанное с диска
	reopened, err := NewFile(path)
	require.NoError(t, err)

	v, ok, err := reopened.Read(CartKey)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1,"quantity":2}]`, v)

	v, ok, _ = reopened.Read(InstallPromptDismissKey)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestFileStore_DeleteRemovesFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Write("k", "v"))
	require.NoError(t, s.Delete("k"))

	reopened, err := NewFile(path)
	require.NoError(t, err)
	_, ok, _ := reopened.Read("k")
	assert.False(t, ok)
}

func TestFileStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{не json"), 0o644))

	_, err := NewFile(path)
	assert.Error(t, err)
}
