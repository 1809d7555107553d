package badger

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/gallerit/core"
	"github.com/poiesic/gallerit/storage"
)

func newTestRepo(t *testing.T) (*BlobRepository, *Backend) {
	t.Helper()
	backend, err := OpenMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo, err := NewBlobRepository(backend)
	require.NoError(t, err)
	return repo, backend
}

func readAll(t *testing.T, repo storage.BlobRepository, url string) []byte {
	t.Helper()
	rc, err := repo.Open(context.Background(), url)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestNewBlobRepository_NilBackend(t *testing.T) {
	_, err := NewBlobRepository(nil)
	assert.Error(t, err)
}

func TestBlobRepository_PutOpen(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	url, err := repo.Put(ctx, "image/png", []byte("fake png bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, URLScheme))

	assert.Equal(t, []byte("fake png bytes"), readAll(t, repo, url))

	info, err := repo.Stat(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MIMEType)
	assert.Equal(t, int64(14), info.Size)
	assert.Equal(t, core.DigestFromContent([]byte("fake png bytes")), info.Digest)
	assert.False(t, info.Created().IsZero())
}

func TestBlobRepository_DistinctURLs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	a, err := repo.Put(ctx, "image/jpeg", []byte("same"))
	require.NoError(t, err)
	b, err := repo.Put(ctx, "image/jpeg", []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	require.NoError(t, repo.Revoke(ctx, a))
	assert.Equal(t, []byte("same"), readAll(t, repo, b), "revoking one URL leaves the other intact")
}

func TestBlobRepository_Errors(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Put(ctx, "image/png", nil)
	assert.ErrorIs(t, err, storage.ErrEmptyBlob)

	_, err = repo.Open(ctx, "https://example.com/cat.png")
	assert.ErrorIs(t, err, storage.ErrInvalidURL)

	_, err = repo.Open(ctx, URLScheme+"not-a-uuid")
	assert.ErrorIs(t, err, storage.ErrInvalidURL)

	_, err = repo.Open(ctx, URLScheme+"6f1c1a8e-9d3b-4c55-8a55-1d3c0b9c7e21")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.Stat(ctx, URLScheme+"6f1c1a8e-9d3b-4c55-8a55-1d3c0b9c7e21")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.Put(cancelled, "image/png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBlobRepository_Revoke(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	url, err := repo.Put(ctx, "image/gif", []byte("GIF89a"))
	require.NoError(t, err)

	require.NoError(t, repo.Revoke(ctx, url))
	require.NoError(t, repo.Revoke(ctx, url), "revoking twice is a no-op")

	_, err = repo.Open(ctx, url)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.Stat(ctx, url)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBlobRepository_DetectsCorruption(t *testing.T) {
	repo, backend := newTestRepo(t)
	ctx := context.Background()

	url, err := repo.Put(ctx, "image/png", []byte("original"))
	require.NoError(t, err)
	id, err := parseBlobURL(url)
	require.NoError(t, err)

	err = backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeBlobDataKey(id), []byte("tampered"))
	})
	require.NoError(t, err)

	_, err = repo.Open(ctx, url)
	assert.ErrorIs(t, err, storage.ErrCorruptBlob)
}

func TestBlobRepository_ConcurrentPut(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const n = 32
	urls := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			urls[i], errs[i] = repo.Put(ctx, "image/png", []byte{byte(i) + 1})
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[urls[i]])
		seen[urls[i]] = true
		assert.Equal(t, []byte{byte(i) + 1}, readAll(t, repo, urls[i]))
	}
}

func TestNewMemoryBlobRepository(t *testing.T) {
	repo, err := NewMemoryBlobRepository()
	require.NoError(t, err)

	url, err := repo.Put(context.Background(), "image/png", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = repo.Open(context.Background(), url)
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))
}
