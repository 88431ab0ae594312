package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutOpenRemove(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	obj, err := store.Put("courses/1/notes.txt", strings.NewReader("hello"), 10)
	require.NoError(t, err)
	sum := sha256.Sum256([]byte("hello"))
	assert.Equal(t, Object{Name: "courses/1/notes.txt", Size: 5, Checksum: hex.EncodeToString(sum[:])}, obj)

	f, err := store.Open(obj.Name)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(obj.Name))
	require.NoError(t, store.Remove(obj.Name))
	_, err = store.Open(obj.Name)
	require.Error(t, err)
}

func TestLocalStorageRejectsOversizedStream(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)

	_, err = store.Put("courses/1/big.bin", strings.NewReader("0123456789"), 4)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(root, "courses", "1"))
	require.NoError(t, err)
	assert.Empty(t, entries, "partial upload left behind")
}

func TestLocalStorageConfinesNames(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)

	obj, err := store.Put("../../escape.txt", strings.NewReader("x"), 0)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	require.NoError(t, err)
	assert.Equal(t, "../../escape.txt", obj.Name)

	for _, name := range []string{"", "/", "courses/.hidden"} {
		_, err := store.Put(name, strings.NewReader("x"), 0)
		assert.Error(t, err, name)
	}
}
