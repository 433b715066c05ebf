package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"taskup-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	n, err := s.Save(ctx, "tasks/t1/notes.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	rc, err := s.Open(ctx, "tasks/t1/notes.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "tasks/t1/notes.txt"))
	require.NoError(t, s.Delete(ctx, "tasks/t1/notes.txt"), "deleting a missing object is not an error")

	_, err = s.Open(ctx, "tasks/t1/notes.txt")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLocalStorageSizeMismatch(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "a.bin", strings.NewReader("abc"), 10, "")
	assert.Error(t, err)

	_, err = s.Open(context.Background(), "a.bin")
	assert.Error(t, err, "a failed save leaves nothing behind")
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"", "/etc/passwd", "../secret", "a/../../b", "..", `a\b`} {
		_, err := s.Save(context.Background(), p, strings.NewReader("x"), -1, "")
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestDeleteAll(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{"x/1", "x/2"} {
		_, err := s.Save(ctx, p, strings.NewReader("data"), -1, "")
		require.NoError(t, err)
	}
	require.NoError(t, DeleteAll(ctx, s, []string{"x/1", "x/2", "x/3"}))

	err = DeleteAll(ctx, s, []string{"../bad", "x/1"})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestNewSelectsDriver(t *testing.T) {
	s, err := New(context.Background(), &config.Config{StorageDriver: "local", StoragePath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), &config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), &config.Config{StorageDriver: "minio"})
	assert.Error(t, err, "minio requires an endpoint and bucket")
}
