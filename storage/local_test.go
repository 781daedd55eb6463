package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()

	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	return s
}

func TestLocalPutGetRoundTrip(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	handle, err := s.Put(ctx, &Blob{
		ClipboardID:  "1234",
		Filename:     "abc123.txt",
		OriginalName: "notes.txt",
		MimeType:     "text/plain",
		Data:         []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1234/abc123.txt", handle)

	got, err := s.Get(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got.Data)
	assert.Equal(t, "notes.txt", got.OriginalName)
	assert.Equal(t, "text/plain", got.MimeType)
}

func TestLocalGetMissing(t *testing.T) {
	s := newTestLocalStore(t)

	_, err := s.Get(context.Background(), "1234/nothing.txt")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalDelete(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	handle, err := s.Put(ctx, &Blob{
		ClipboardID: "1234",
		Filename:    "a.bin",
		MimeType:    "application/octet-stream",
		Data:        []byte{1, 2, 3},
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, handle))

	_, err = s.Get(ctx, handle)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	// Deleting again is fine
	assert.NoError(t, s.Delete(ctx, handle))
}

func TestLocalDeleteAllForClipboard(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := s.Put(ctx, &Blob{
			ClipboardID: "1234",
			Filename:    name,
			MimeType:    "text/plain",
			Data:        []byte(name),
		})
		require.NoError(t, err)
	}

	_, err := s.Put(ctx, &Blob{
		ClipboardID: "5678",
		Filename:    "other.txt",
		MimeType:    "text/plain",
		Data:        []byte("other"),
	})
	require.NoError(t, err)

	n, err := s.DeleteAllForClipboard(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.Get(ctx, "1234/a.txt")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	// The other clipboard's blob is untouched
	_, err = s.Get(ctx, "5678/other.txt")
	assert.NoError(t, err)

	// Nothing left to delete
	n, err = s.DeleteAllForClipboard(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLocalRejectsEscapingHandles(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlobNotFound)
}
