package secrets

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, password string) *FileStore {
	t.Helper()
	t.Setenv("KGL_QUIET", "1")
	store, err := NewFileStore(filepath.Join(t.TempDir(), "kgl", "credentials.enc"), password)
	require.NoError(t, err)
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestStore(t, "hunter2")

	_, err := store.Get("kaggle.api.token.json")
	assert.ErrorIs(t, err, ErrNotFound)

	token := `{"username":"alice","key":"s3cret"}`
	require.NoError(t, store.Set("kaggle.api.token.json", token))
	require.NoError(t, store.Set("other", "x"))

	got, err := store.Get("kaggle.api.token.json")
	require.NoError(t, err)
	assert.Equal(t, token, got)

	keys, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"kaggle.api.token.json", "other"}, keys)

	require.NoError(t, store.Delete("other"))
	assert.ErrorIs(t, store.Delete("other"), ErrNotFound)
}

func TestFileStoreEncryptsAtRest(t *testing.T) {
	store := newTestStore(t, "hunter2")
	require.NoError(t, store.Set("k", "s3cret-value"))

	raw, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret-value")

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreWrongPassword(t *testing.T) {
	store := newTestStore(t, "hunter2")
	require.NoError(t, store.Set("k", "v"))

	other, err := NewFileStore(store.path, "not-it")
	require.NoError(t, err)
	_, err = other.Get("k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decrypt credentials")
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	store := newTestStore(t, "hunter2")
	other, err := NewFileStore(store.path, "hunter2")
	require.NoError(t, err)

	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for i, k := range keys {
		s := store
		if i%2 == 1 {
			s = other
		}
		wg.Add(1)
		go func(s *FileStore, k string) {
			defer wg.Done()
			assert.NoError(t, s.Set(k, k))
		}(s, k)
	}
	wg.Wait()

	got, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, keys, got)
}

func TestDetectBackendOverride(t *testing.T) {
	t.Setenv(BackendEnv, "file")
	assert.Equal(t, BackendFile, DetectBackend())

	t.Setenv(BackendEnv, "KEYRING")
	assert.Equal(t, BackendKeyring, DetectBackend())
}
