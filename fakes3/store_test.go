package fakes3_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"testing"

	"github.com/s3req/s3req"
	"github.com/s3req/s3req/fakes3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *fakes3.Store {
	t.Helper()
	root, err := os.OpenRoot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	return fakes3.NewStore(root)
}

func TestStore_WriteGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	content := []byte("this is a test")
	sum := sha256.Sum256(content)

	result, err := store.Write(ctx, "testfile.txt", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), result.BytesWritten)
	assert.Equal(t, hex.EncodeToString(sum[:]), result.ETag)

	f, err := store.Get(ctx, "testfile.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, "testfile.txt"))

	_, err = store.Get(ctx, "testfile.txt")
	assert.ErrorIs(t, err, s3req.ErrNotFound)
}

func TestStore_NestedKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Write(ctx, "a/b/c/file.txt", bytes.NewReader([]byte("nested")))
	require.NoError(t, err)

	f, err := store.Get(ctx, "a/b/c/file.txt")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "nested", string(got))
}

func TestStore_OverwriteReplacesContent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Write(ctx, "k.txt", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	second, err := store.Write(ctx, "k.txt", bytes.NewReader([]byte("two")))
	require.NoError(t, err)

	f, err := store.Get(ctx, "k.txt")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	sum := sha256.Sum256([]byte("two"))
	assert.Equal(t, hex.EncodeToString(sum[:]), second.ETag)
}

func TestStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)
	err := store.Delete(context.Background(), "absent.txt")
	assert.ErrorIs(t, err, s3req.ErrNotFound)
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Write(ctx, "k.txt", bytes.NewReader([]byte("x")))
	assert.Error(t, err)
	_, err = store.Get(ctx, "k.txt")
	assert.Error(t, err)
}

func TestIsValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"META.json", true},
		{"path/to/file.txt", true},
		{"", false},
		{".", false},
		{"/", false},
		{"/absolute.txt", false},
		{"trailing/", false},
		{"a//b", false},
		{"../escape.txt", false},
		{"a/../b", false},
		{"a/./b", false},
		{"a/.", false},
		{"has space.txt", false},
		{"back\\slash", false},
		{"query?string", false},
		{"frag#ment", false},
		{"til~de", false},
		{"nul\x00byte", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, fakes3.IsValidKey(tt.key))
		})
	}
}
