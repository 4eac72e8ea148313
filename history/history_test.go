package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/s3req/s3req/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *history.Log {
	t.Helper()
	log, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestLog_RecordAndList(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	stored, err := log.Record(ctx, history.Entry{
		Operation: "put",
		Bucket:    "cleverelephant-west-1",
		Key:       "testfile.txt",
		Status:    "200 OK",
		ETag:      "abc123",
		SizeBytes: 14,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	entries, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, stored.ID, entries[0].ID)
	assert.Equal(t, "put", entries[0].Operation)
	assert.Equal(t, "cleverelephant-west-1", entries[0].Bucket)
	assert.Equal(t, "testfile.txt", entries[0].Key)
	assert.Equal(t, "200 OK", entries[0].Status)
	assert.Equal(t, "abc123", entries[0].ETag)
	assert.Equal(t, int64(14), entries[0].SizeBytes)
	assert.WithinDuration(t, stored.CreatedAt, entries[0].CreatedAt, time.Millisecond)
}

func TestLog_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	base := time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC)
	for i, op := range []string{"put", "get", "delete"} {
		_, err := log.Record(ctx, history.Entry{
			Operation: op,
			Bucket:    "b",
			Key:       "k.txt",
			Status:    "200 OK",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "delete", entries[0].Operation)
	assert.Equal(t, "get", entries[1].Operation)
	assert.Equal(t, "put", entries[2].Operation)
}

func TestLog_ListLimit(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	base := time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC)
	for i := range 5 {
		_, err := log.Record(ctx, history.Entry{
			Operation: "get",
			Bucket:    "b",
			Key:       "k.txt",
			Status:    "200 OK",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	entries, err := log.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLog_ReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "history.db")

	log, err := history.Open(ctx, dsn)
	require.NoError(t, err)
	_, err = log.Record(ctx, history.Entry{Operation: "put", Bucket: "b", Key: "k.txt", Status: "200 OK"})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	reopened, err := history.Open(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	entries, err := reopened.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
